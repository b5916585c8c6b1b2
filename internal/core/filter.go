package core

import (
	"strings"

	"github.com/ianderson/ClerkBot/internal/domain"
)

// Reserved navigation labels. They impose no folder restriction: "Shared
// with me" and "Trash" currently behave the same as "All Conversations".
// That is the shipped behavior, not an accident to correct here.
const (
	FolderAll    = "All Conversations"
	FolderShared = "Shared with me"
	FolderTrash  = "Trash"
)

// Filter is the view context for the library: free-text search combined with
// folder and status facets. A nil Statuses slice means the default facet
// (all three statuses selected); an empty non-nil slice selects nothing.
type Filter struct {
	Query    string
	Folder   string
	Statuses []domain.Status
}

// MatchesSearch reports whether the meeting's title+date contain the query as
// a case-insensitive substring. The query is deliberately not trimmed: a
// whitespace-only query matches literally. An empty query always passes.
func MatchesSearch(m *domain.Meeting, query string) bool {
	terms := strings.ToLower(m.Title + " " + m.Date)
	return strings.Contains(terms, strings.ToLower(query))
}

// MatchesFolder reports whether the meeting belongs to the active folder.
// Reserved labels pass everything.
func MatchesFolder(m *domain.Meeting, folder string) bool {
	switch folder {
	case FolderAll, FolderShared, FolderTrash:
		return true
	}
	return m.Folder == folder
}

// MatchesStatus reports whether the meeting's status is in the selected set.
func MatchesStatus(m *domain.Meeting, statuses []domain.Status) bool {
	if statuses == nil {
		statuses = domain.AllStatuses()
	}
	for _, s := range statuses {
		if m.Status == s {
			return true
		}
	}
	return false
}

// Apply returns the meetings satisfying all three predicates, preserving the
// input order. It never mutates the input.
func Apply(meetings []domain.Meeting, f Filter) []domain.Meeting {
	out := make([]domain.Meeting, 0, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		if !MatchesSearch(m, f.Query) {
			continue
		}
		if !MatchesFolder(m, f.Folder) {
			continue
		}
		if !MatchesStatus(m, f.Statuses) {
			continue
		}
		out = append(out, meetings[i])
	}
	return out
}
