package parser

import "encoding/json"

// FilterSet holds the structured constraints extracted from one query.
// Zero values mean "no constraint": an empty Author does not require an
// empty author.
type FilterSet struct {
	Author    string
	Journal   string
	YearMin   *int
	YearMax   *int
	ExactYear *int
	Topics    []string
}

// IsEmpty reports whether no filter is active.
func (f FilterSet) IsEmpty() bool {
	return f.Author == "" && f.Journal == "" && !f.HasYearBound() && len(f.Topics) == 0
}

// HasYearBound reports whether any year constraint is present.
func (f FilterSet) HasYearBound() bool {
	return f.YearMin != nil || f.YearMax != nil || f.ExactYear != nil
}

// MarshalJSON renders absent string filters as null.
func (f FilterSet) MarshalJSON() ([]byte, error) {
	nullable := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	topics := f.Topics
	if topics == nil {
		topics = []string{}
	}
	return json.Marshal(struct {
		Author    *string  `json:"author"`
		Journal   *string  `json:"journal"`
		YearMin   *int     `json:"year_min"`
		YearMax   *int     `json:"year_max"`
		ExactYear *int     `json:"exact_year"`
		Topics    []string `json:"topics"`
	}{nullable(f.Author), nullable(f.Journal), f.YearMin, f.YearMax, f.ExactYear, topics})
}

// UnmarshalJSON accepts the shape written by MarshalJSON.
func (f *FilterSet) UnmarshalJSON(data []byte) error {
	var wire struct {
		Author    *string  `json:"author"`
		Journal   *string  `json:"journal"`
		YearMin   *int     `json:"year_min"`
		YearMax   *int     `json:"year_max"`
		ExactYear *int     `json:"exact_year"`
		Topics    []string `json:"topics"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*f = FilterSet{YearMin: wire.YearMin, YearMax: wire.YearMax, ExactYear: wire.ExactYear, Topics: wire.Topics}
	if wire.Author != nil {
		f.Author = *wire.Author
	}
	if wire.Journal != nil {
		f.Journal = *wire.Journal
	}
	return nil
}
