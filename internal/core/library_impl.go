package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/domain"
)

// libraryImpl is a threadsafe in-memory library.
type libraryImpl struct {
	mu       sync.RWMutex
	meetings []domain.Meeting
	byID     map[domain.MeetingID]struct{}
}

func NewLibrary() Library {
	return &libraryImpl{
		byID: make(map[domain.MeetingID]struct{}),
	}
}

func (l *libraryImpl) Add(m domain.Meeting) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[m.ID]; ok {
		return ErrDuplicateID
	}
	l.byID[m.ID] = struct{}{}
	l.meetings = append([]domain.Meeting{m}, l.meetings...)
	log.Info().Str("module", "core.library").Str("id", string(m.ID)).Str("title", m.Title).Msg("meeting added")
	return nil
}

// snapshot copies the fields SetActionItemDone mutates in place, so readers
// never alias the store's backing array after the lock is released.
func snapshot(m domain.Meeting) domain.Meeting {
	if len(m.ActionItems) > 0 {
		items := make([]domain.ActionItem, len(m.ActionItems))
		copy(items, m.ActionItems)
		m.ActionItems = items
	}
	return m
}

func (l *libraryImpl) List() []domain.Meeting {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Meeting, len(l.meetings))
	for i, m := range l.meetings {
		out[i] = snapshot(m)
	}
	return out
}

func (l *libraryImpl) Get(id domain.MeetingID) (domain.Meeting, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.meetings {
		if m.ID == id {
			return snapshot(m), true
		}
	}
	return domain.Meeting{}, false
}

func (l *libraryImpl) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.meetings)
}

func (l *libraryImpl) SetActionItemDone(id domain.MeetingID, item domain.ActionItemID, done bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for mi := range l.meetings {
		if l.meetings[mi].ID != id {
			continue
		}
		for ai := range l.meetings[mi].ActionItems {
			if l.meetings[mi].ActionItems[ai].ID == item {
				l.meetings[mi].ActionItems[ai].Completed = done
				log.Info().Str("module", "core.library").Str("id", string(id)).Str("item", string(item)).Bool("done", done).Msg("action item updated")
				return nil
			}
		}
		return ErrActionItemMissing
	}
	return ErrMeetingNotFound
}
