package corpus

import (
	"fmt"
	"strings"
)

// AssignAuthorIDs gives every distinct first author (case-insensitive) an
// ID of the form T001, T002, ... in order of first appearance. Records that
// already carry an ID keep it, and that ID is reused for the same author.
// Records without a first author get no ID. The slice is modified in place.
func AssignAuthorIDs(papers []Paper) {
	ids := make(map[string]string)
	taken := make(map[string]bool)
	for _, p := range papers {
		key := authorKey(p.FirstAuthor)
		if p.TeacherID == "" || key == "" {
			continue
		}
		taken[p.TeacherID] = true
		if _, ok := ids[key]; !ok {
			ids[key] = p.TeacherID
		}
	}

	next := 1
	for i := range papers {
		key := authorKey(papers[i].FirstAuthor)
		if key == "" || papers[i].TeacherID != "" {
			continue
		}
		id, ok := ids[key]
		if !ok {
			for {
				id = fmt.Sprintf("T%03d", next)
				next++
				if !taken[id] {
					break
				}
			}
			ids[key] = id
			taken[id] = true
		}
		papers[i].TeacherID = id
	}
}

func authorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
