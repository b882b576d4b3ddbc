package corpus

import "fmt"

// Store is the ordered, read-only paper collection for one snapshot.
type Store struct {
	papers     []Paper
	normalized []Normalized
	malformed  int
}

// NewStore copies papers and computes their normalized views. malformed is
// the number of records the loader had to default.
func NewStore(papers []Paper, malformed int) *Store {
	s := &Store{
		papers:     make([]Paper, len(papers)),
		normalized: make([]Normalized, len(papers)),
		malformed:  malformed,
	}
	copy(s.papers, papers)
	for i, p := range s.papers {
		s.normalized[i] = Normalize(p)
	}
	return s
}

func (s *Store) Len() int { return len(s.papers) }

// Malformed is the number of records loaded with defaulted fields.
func (s *Store) Malformed() int { return s.malformed }

// Records returns the papers in load order. Callers must not modify the
// returned slice.
func (s *Store) Records() []Paper { return s.papers }

// RecordAt returns record i.
func (s *Store) RecordAt(i int) (Paper, error) {
	if i < 0 || i >= len(s.papers) {
		return Paper{}, fmt.Errorf("record %d out of range [0,%d)", i, len(s.papers))
	}
	return s.papers[i], nil
}

// NormalizedAt returns the normalized view of record i; i must be in range.
func (s *Store) NormalizedAt(i int) Normalized { return s.normalized[i] }
