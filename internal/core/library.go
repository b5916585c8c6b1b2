// Package core holds the meeting library and the filtering rules applied to
// it. It owns no transport resources.
package core

import (
	"errors"

	"github.com/ianderson/ClerkBot/internal/domain"
)

var (
	ErrDuplicateID       = errors.New("meeting id already exists")
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrActionItemMissing = errors.New("action item not found")
)

// Library is the single source of truth for the meeting collection.
// Its only ordering guarantee is most-recent-first insertion order; it never
// sorts by date or time fields.
type Library interface {
	// Add inserts at the front of the collection. Fails with ErrDuplicateID
	// if the id is taken; callers own id generation.
	Add(m domain.Meeting) error
	// List returns the full ordered collection.
	List() []domain.Meeting
	Get(id domain.MeetingID) (domain.Meeting, bool)
	Len() int
	// SetActionItemDone flips the completed flag on one action item.
	SetActionItemDone(id domain.MeetingID, item domain.ActionItemID, done bool) error
}
