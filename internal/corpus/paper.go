// Package corpus loads academic-paper records from JSON files or SQL tables
// into an ordered, immutable Store. Records are never dropped: malformed
// fields are defaulted so that record i stays aligned with index row i.
package corpus

import "strings"

// Paper is a single research-paper record as supplied by the ingestion side.
type Paper struct {
	FirstAuthor string   `json:"first_author"`
	CoAuthors   string   `json:"co_authors"`
	Title       string   `json:"title"`
	Journal     string   `json:"journal"`
	Year        string   `json:"year"`
	Keywords    []string `json:"keywords"`
	DOI         string   `json:"doi"`
	AltLink     string   `json:"alt_link"`
	TeacherID   string   `json:"teacher_id,omitempty"`
}

// Normalized holds lower-cased, trimmed copies of a Paper's text fields.
// It is computed once at load time.
type Normalized struct {
	FirstAuthor string
	CoAuthors   string
	Title       string
	Journal     string
	Year        string
	Keywords    []string
}

// Normalize derives the normalized view of p.
func Normalize(p Paper) Normalized {
	n := Normalized{
		FirstAuthor: normText(p.FirstAuthor),
		CoAuthors:   normText(p.CoAuthors),
		Title:       normText(p.Title),
		Journal:     normText(p.Journal),
		Year:        strings.TrimSpace(p.Year),
		Keywords:    make([]string, 0, len(p.Keywords)),
	}
	for _, kw := range p.Keywords {
		if kw = normText(kw); kw != "" {
			n.Keywords = append(n.Keywords, kw)
		}
	}
	return n
}

// SearchText is the space-joined text that topic filters and bonuses match
// against: title, journal, authors and keywords.
func (n Normalized) SearchText() string {
	parts := []string{n.Title, n.Journal, n.FirstAuthor, n.CoAuthors, strings.Join(n.Keywords, " ")}
	return strings.Join(parts, " ")
}

// TitleKeywords is the title followed by the keywords.
func (n Normalized) TitleKeywords() string {
	return n.Title + " " + strings.Join(n.Keywords, " ")
}

func normText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
