package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
  {"first_author": "Alice Rao", "co_authors": "Ben Li", "title": "IoT Sensing", "journal": "IEEE Access",
   "year": 2019.0, "keywords": ["iot", " sensors "], "doi": "10.1/a", "alt_link": ""},
  {"first_author": "Bob Shah", "title": 42, "journal": null, "year": "2022",
   "keywords": "blockchain, ledgers, ,"},
  "not an object",
  {"first_author": " alice rao ", "co_authors": "", "title": "AI Survey", "journal": "Nature",
   "year": "", "keywords": {"bad": true}, "doi": "", "alt_link": "", "teacher_id": ""}
]`

func TestDecodeJSONKeepsMalformedRecords(t *testing.T) {
	batch, err := DecodeJSON(strings.NewReader(sample))
	require.NoError(t, err)
	papers := batch.Papers
	require.Len(t, papers, 4)
	assert.Equal(t, 3, batch.Malformed)

	assert.Equal(t, "2019", papers[0].Year)
	assert.Equal(t, []string{"iot", "sensors"}, papers[0].Keywords)

	assert.Equal(t, "42", papers[1].Title)
	assert.Equal(t, "", papers[1].Journal)
	assert.Equal(t, []string{"blockchain", "ledgers"}, papers[1].Keywords)

	assert.Equal(t, Paper{Keywords: []string{}}, papers[2])
	assert.Equal(t, []string{}, papers[3].Keywords)
}

func TestDecodeJSONRejectsNonArray(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"title": "x"}`))
	assert.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)
}

func TestJSONSourceMissingFile(t *testing.T) {
	_, err := JSONSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)
}

func TestStoreNormalizedView(t *testing.T) {
	s := NewStore([]Paper{{
		FirstAuthor: "  Alice   Rao ",
		Title:       "Deep  LEARNING",
		Keywords:    []string{"AI", " "},
	}}, 0)
	require.Equal(t, 1, s.Len())
	n := s.NormalizedAt(0)
	assert.Equal(t, "alice rao", n.FirstAuthor)
	assert.Equal(t, "deep learning", n.Title)
	assert.Equal(t, []string{"ai"}, n.Keywords)
	assert.Equal(t, "deep learning ai", n.TitleKeywords())

	_, err := s.RecordAt(1)
	assert.Error(t, err)
	p, err := s.RecordAt(0)
	require.NoError(t, err)
	assert.Equal(t, "  Alice   Rao ", p.FirstAuthor)
}

func TestAssignAuthorIDs(t *testing.T) {
	papers := []Paper{
		{FirstAuthor: "Alice Rao"},
		{FirstAuthor: "Bob Shah", TeacherID: "T001"},
		{FirstAuthor: "alice rao "},
		{FirstAuthor: ""},
		{FirstAuthor: "bob shah"},
		{FirstAuthor: "Carol Diaz"},
	}
	AssignAuthorIDs(papers)

	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.TeacherID
	}
	assert.Equal(t, []string{"T002", "T001", "T002", "", "T001", "T003"}, ids)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	batch, err := DecodeJSON(strings.NewReader(sample))
	require.NoError(t, err)
	papers := batch.Papers
	AssignAuthorIDs(papers)

	path := filepath.Join(t.TempDir(), "research.db")
	require.NoError(t, WriteSQLite(ctx, path, "research_papers", papers))

	src, err := OpenSQLite(path, "research_papers")
	require.NoError(t, err)
	defer src.Close()

	store, err := Load(ctx, src)
	require.NoError(t, err)
	require.Equal(t, len(papers), store.Len())
	assert.Equal(t, 0, store.Malformed())
	for i, want := range papers {
		got, err := store.RecordAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, got, "record %d", i)
	}
}

func TestSQLiteSourceErrors(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "none.db"), "research_papers")
	assert.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)

	path := filepath.Join(t.TempDir(), "research.db")
	require.NoError(t, WriteSQLite(context.Background(), path, "other", nil))
	_, err = OpenSQLite(path, "papers; DROP TABLE other")
	assert.Error(t, err)

	src, err := OpenSQLite(path, "research_papers")
	require.NoError(t, err)
	defer src.Close()
	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorpusUnavailable)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteJSON(f, []Paper{{Title: "X", Keywords: []string{"a"}, TeacherID: "T001"}}))
	require.NoError(t, f.Close())

	batch, err := JSONSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Papers, 1)
	assert.Equal(t, "T001", batch.Papers[0].TeacherID)
}
