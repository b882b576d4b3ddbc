// Package parser extracts structured filters (author, journal, year bounds,
// topics) from free-text paper queries such as
// `papers by Dr. Alice Rao in IEEE Access after 2019 on "edge computing"`.
//
// Parsing is an ordered list of independent rules over a normalized token
// stream. Each rule may claim tokens so later rules skip them. Parse never
// fails; input that matches no rule yields an empty FilterSet.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/Research-Paper-Search/internal/indexer/tokenizer"
)

// phraseBreak separates clauses; no multi-token phrase spans it.
const phraseBreak = ","

type query struct {
	tokens  []string
	claimed []bool
	quoted  []string
}

// bare strips punctuation that may trail a token ("nature." or "2019.").
func bare(tok string) string {
	return strings.Trim(tok, ".'-")
}

func (q *query) free(i int) bool {
	return i < len(q.tokens) && !q.claimed[i] && q.tokens[i] != phraseBreak
}

func (q *query) claim(from, to int) {
	for i := from; i < to; i++ {
		q.claimed[i] = true
	}
}

// rule contributes to a FilterSet from a normalized query.
type rule struct {
	name  string
	apply func(q *query, fs *FilterSet)
}

var rules = []rule{
	{"year", parseYear},
	{"author", parseAuthor},
	{"journal", parseJournal},
	{"topics", parseTopics},
}

var (
	quotedPattern = regexp.MustCompile(`"([^"]+)"`)
	breakChars    = strings.NewReplacer(
		",", " , ", ";", " , ", "?", " , ", "!", " , ", "(", " , ", ")", " , ",
		":", " ", `"`, " ",
	)
)

// Parse turns a free-text query into a FilterSet.
func Parse(raw string) FilterSet {
	fs := FilterSet{}
	q := normalize(raw)
	for _, r := range rules {
		r.apply(q, &fs)
	}
	return fs
}

func normalize(raw string) *query {
	q := &query{}
	for _, m := range quotedPattern.FindAllStringSubmatch(raw, -1) {
		if phrase := strings.TrimSpace(m[1]); phrase != "" {
			q.quoted = append(q.quoted, phrase)
		}
	}
	rest := quotedPattern.ReplaceAllString(raw, " , ")
	rest = breakChars.Replace(strings.ToLower(rest))
	q.tokens = strings.Fields(rest)
	q.claimed = make([]bool, len(q.tokens))
	return q
}

// yearOf returns the year a token denotes when it is a 4-digit year in
// 1900-2099.
func yearOf(tok string) (int, bool) {
	t := bare(tok)
	if len(t) != 4 || !(strings.HasPrefix(t, "19") || strings.HasPrefix(t, "20")) {
		return 0, false
	}
	y, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return y, true
}

type yearClause struct {
	lower  bool
	offset int
}

// yearMarkers maps range keywords to the bound they set. Ranges are
// inclusive, so "after 2015" means year >= 2016.
var yearMarkers = map[string]yearClause{
	"after":  {lower: true, offset: 1},
	"since":  {lower: true, offset: 0},
	"before": {lower: false, offset: -1},
	"until":  {lower: false, offset: 0},
}

func parseYear(q *query, fs *FilterSet) {
	var explicit *int
	for i := 0; i+1 < len(q.tokens); i++ {
		word := bare(q.tokens[i])
		y, ok := yearOf(q.tokens[i+1])
		if !ok {
			continue
		}
		if clause, isRange := yearMarkers[word]; isRange {
			bound := y + clause.offset
			if clause.lower && (fs.YearMin == nil || bound > *fs.YearMin) {
				fs.YearMin = &bound
			}
			if !clause.lower && (fs.YearMax == nil || bound < *fs.YearMax) {
				fs.YearMax = &bound
			}
			q.claim(i, i+2)
			i++
			continue
		}
		if word == "year" && explicit == nil {
			explicit = &y
			q.claim(i, i+2)
			i++
		}
	}

	if fs.YearMin != nil || fs.YearMax != nil {
		return
	}
	exact := explicit
	if exact == nil {
		seen := map[int]bool{}
		var only int
		for i, tok := range q.tokens {
			if q.claimed[i] {
				continue
			}
			if y, ok := yearOf(tok); ok && !seen[y] {
				seen[y] = true
				only = y
			}
		}
		if len(seen) == 1 {
			exact = &only
		}
	}
	if exact != nil {
		lo, hi := *exact, *exact
		fs.ExactYear, fs.YearMin, fs.YearMax = exact, &lo, &hi
	}
}

// stopMarkers end an author or journal phrase.
var stopMarkers = toSet("in", "journal", "before", "after", "since", "until",
	"year", "on", "about", "published", "from", "and", "or", "with", "for",
	"regarding", "related")

var honorifics = toSet("dr", "dr.", "prof", "prof.", "professor")

var (
	namePattern    = regexp.MustCompile(`^\p{L}[\p{L}.'\-]*$`)
	journalPattern = regexp.MustCompile(`^[\p{L}\p{N}&.\-]+$`)
)

// phrase collects free tokens from start until a break, a stop marker, a
// year, or a token not matching allowed. It returns the end index.
func (q *query) phrase(start int, allowed *regexp.Regexp) ([]string, int) {
	var words []string
	j := start
	for ; q.free(j); j++ {
		tok := q.tokens[j]
		if _, stop := stopMarkers[bare(tok)]; stop {
			break
		}
		if _, isYear := yearOf(tok); isYear || !allowed.MatchString(tok) {
			break
		}
		words = append(words, tok)
	}
	return words, j
}

func parseAuthor(q *query, fs *FilterSet) {
	for i := range q.tokens {
		if !q.free(i) {
			continue
		}
		if w := bare(q.tokens[i]); w != "by" && w != "author" {
			continue
		}
		start := i + 1
		for q.free(start) {
			if _, ok := honorifics[q.tokens[start]]; !ok {
				break
			}
			start++
		}
		words, end := q.phrase(start, namePattern)
		name := strings.Trim(strings.Join(words, " "), ". ")
		if name == "" {
			continue
		}
		fs.Author = titleCase(name)
		q.claim(i, end)
		return
	}
}

func parseJournal(q *query, fs *FilterSet) {
	for i := range q.tokens {
		if !q.free(i) {
			continue
		}
		start := i + 1
		switch bare(q.tokens[i]) {
		case "journal":
		case "in":
		case "published":
			if !q.free(start) || q.tokens[start] != "in" {
				continue
			}
			start++
		default:
			continue
		}
		if !q.free(start) {
			continue
		}
		if _, isYear := yearOf(q.tokens[start]); isYear {
			continue
		}
		words, end := q.phrase(start, journalPattern)
		name := strings.Trim(strings.Join(words, " "), ". ")
		if name == "" {
			continue
		}
		// "in healthcare" names a topic, not a venue.
		if q.matchSeed(start) == len(words) {
			continue
		}
		fs.Journal = name
		q.claim(i, end)
		return
	}
}

var seedTopics = [][]string{
	{"artificial", "intelligence"},
	{"natural", "language", "processing"},
	{"machine", "learning"},
	{"deep", "learning"},
	{"computer", "vision"},
	{"data", "mining"},
	{"cloud", "computing"},
	{"edge", "computing"},
	{"ai"}, {"ml"}, {"dl"}, {"nlp"}, {"cv"}, {"blockchain"}, {"cybersecurity"},
	{"cloud"}, {"iot"}, {"healthcare"}, {"bioinformatics"}, {"security"},
	{"privacy"}, {"recommendation"}, {"graph"}, {"optimization"},
}

var fillerWords = toSet("papers", "paper", "articles", "article", "research",
	"show", "find", "list", "give", "me", "get", "search", "related",
	"regarding", "topic", "topics", "publication", "publications", "works",
	"work", "study", "studies", "by", "author", "journal", "year", "published",
	"dr", "prof", "professor", "after", "before", "since", "until")

// matchSeed returns the length of the longest seed topic starting at i.
func (q *query) matchSeed(i int) int {
	best := 0
	for _, seed := range seedTopics {
		if len(seed) <= best || i+len(seed) > len(q.tokens) {
			continue
		}
		ok := true
		for k, w := range seed {
			if bare(q.tokens[i+k]) != w {
				ok = false
				break
			}
		}
		if ok {
			best = len(seed)
		}
	}
	return best
}

// spanFree reports whether no token in [from, to) was claimed by an
// earlier rule.
func (q *query) spanFree(from, to int) bool {
	for i := from; i < to; i++ {
		if !q.free(i) {
			return false
		}
	}
	return true
}

func parseTopics(q *query, fs *FilterSet) {
	seen := map[string]bool{}
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			fs.Topics = append(fs.Topics, t)
		}
	}
	for _, phrase := range q.quoted {
		add(phrase)
	}
	for i := 0; i < len(q.tokens); i++ {
		if n := q.matchSeed(i); n > 0 && q.spanFree(i, i+n) {
			words := make([]string, n)
			for k := range words {
				words[k] = bare(q.tokens[i+k])
			}
			add(strings.Join(words, " "))
			q.claim(i, i+n)
			i += n - 1
			continue
		}
		if !q.free(i) {
			continue
		}
		if w := bare(q.tokens[i]); isContentWord(w) {
			add(w)
		}
	}
}

func isContentWord(w string) bool {
	if len(w) < 2 || tokenizer.IsStopWord(w) {
		return false
	}
	if _, filler := fillerWords[w]; filler {
		return false
	}
	if _, isYear := yearOf(w); isYear {
		return false
	}
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}

// titleCase upper-cases the first letter of each letter run, so
// "o'brien j.k." becomes "O'Brien J.K.".
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if !prevLetter {
				out[i] = unicode.ToUpper(r)
			} else {
				out[i] = unicode.ToLower(r)
			}
			prevLetter = true
			continue
		}
		prevLetter = false
	}
	return string(out)
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
