package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
)

// Batch is the outcome of reading a source: all records in order plus the
// number that needed defaulted fields.
type Batch struct {
	Papers    []Paper
	Malformed int
}

// Source yields the ordered paper records of a corpus.
type Source interface {
	Load(ctx context.Context) (Batch, error)
	Describe() string
}

// Load reads all records from src, assigns author IDs and builds a Store.
func Load(ctx context.Context, src Source) (*Store, error) {
	batch, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	AssignAuthorIDs(batch.Papers)
	return NewStore(batch.Papers, batch.Malformed), nil
}

var fieldNames = []string{
	"first_author", "co_authors", "title", "journal", "year", "keywords", "doi", "alt_link",
}

// decodeRecord coerces a loosely typed record into a Paper. Missing or
// wrongly typed fields fall back to empty values and are reported through
// logger as a malformed record.
func decodeRecord(logger *slog.Logger, pos int, fields map[string]any) (Paper, bool) {
	var (
		p   Paper
		bad []string
	)
	str := func(key string, dst *string) {
		v, present := fields[key]
		if !present {
			bad = append(bad, key+" (missing)")
			return
		}
		s, ok := coerceString(v)
		if !ok {
			bad = append(bad, key+" (wrong type)")
		}
		*dst = s
	}
	str("first_author", &p.FirstAuthor)
	str("co_authors", &p.CoAuthors)
	str("title", &p.Title)
	str("journal", &p.Journal)
	str("year", &p.Year)
	str("doi", &p.DOI)
	str("alt_link", &p.AltLink)

	if v, present := fields["keywords"]; !present {
		bad = append(bad, "keywords (missing)")
	} else {
		kws, ok := coerceKeywords(v)
		if !ok {
			bad = append(bad, "keywords (wrong type)")
		}
		p.Keywords = kws
	}
	if v, present := fields["teacher_id"]; present {
		p.TeacherID, _ = coerceString(v)
	}
	p.TeacherID = strings.TrimSpace(p.TeacherID)

	if len(bad) > 0 {
		sort.Strings(bad)
		logger.Warn("malformed record, using defaults",
			"error", apperrors.ErrMalformedRecord,
			"position", pos,
			"fields", bad,
		)
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p, len(bad) > 0
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case []byte:
		return strings.TrimSpace(string(t)), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func coerceKeywords(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return []string{}, true
	case []any:
		out := make([]string, 0, len(t))
		ok := true
		for _, item := range t {
			s, good := coerceString(item)
			if !good {
				ok = false
				continue
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, ok
	case string, []byte:
		s, _ := coerceString(t)
		return splitKeywords(s), true
	default:
		return []string{}, false
	}
}

func splitKeywords(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrCorpusUnavailable, fmt.Sprintf(format, args...))
}
