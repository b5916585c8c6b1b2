// Package seed loads the demo dataset into the library at startup. Nothing
// here survives a restart; the library is purely in-memory.
package seed

import (
	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
)

// CurrentUser is the participant every capture is attributed to.
func CurrentUser() *domain.Participant {
	return &domain.Participant{
		ID:     "u1",
		Name:   "Isabella Anderson",
		Avatar: "https://picsum.photos/id/64/64/64",
		Role:   "Product Lead",
	}
}

// Participants returns the shared demo people. The same pointers appear in
// multiple meetings: participants are shared by reference, not owned.
func Participants() []*domain.Participant {
	return []*domain.Participant{
		{ID: "p1", Name: "Sarah Jenkins", Avatar: "https://picsum.photos/id/100/64/64"},
		{ID: "p2", Name: "Devin Miller", Avatar: "https://picsum.photos/id/103/64/64"},
		{ID: "p3", Name: "Alex Chen", Avatar: "https://picsum.photos/id/104/64/64"},
		{ID: "p4", Name: "Alice Smith", Avatar: "https://picsum.photos/id/101/64/64"},
		{ID: "p5", Name: "Mike Ross", Avatar: "https://picsum.photos/id/102/64/64"},
	}
}

// Meetings returns the demo library content in display order.
func Meetings(people []*domain.Participant) []domain.Meeting {
	return []domain.Meeting{
		{
			ID:           "m1",
			Title:        "Q3 Product Strategy Sync",
			Date:         "Oct 24, 2023",
			Time:         "2:00 PM - 2:45 PM",
			Duration:     "45 min",
			Status:       domain.StatusCompleted,
			Participants: people[:5],
			Folder:       "Product Team",
			Summary: "The team discussed the Q4 launch timeline. Alice confirmed marketing assets " +
				"are on track for Friday. Isabella raised concerns about QA buffers.",
			Transcript: []domain.TranscriptEntry{
				{Speaker: "Sarah Jenkins", Avatar: people[0].Avatar, Time: "02:14", Text: "Alright everyone, let's get started. I wanted to focus primarily on the churn rate we observed last month."},
				{Speaker: "Devin Miller", Avatar: people[1].Avatar, Time: "02:35", Text: "I dug into the data yesterday. Most of it seems to be coming from the legacy enterprise accounts."},
				{Speaker: "Sarah Jenkins", Avatar: people[0].Avatar, Time: "03:01", Text: "That makes sense. Can we set up an automated email campaign to target those specific users?"},
			},
			ActionItems: []domain.ActionItem{
				{ID: "a1", Text: "Export legacy account list", AssignedTo: "Devin", Initials: "DM", Color: "purple", DueDate: "Due Fri", Completed: false},
				{ID: "a2", Text: "Draft email campaign tutorial", AssignedTo: "Alex", Initials: "AC", Color: "orange", DueDate: "Due Fri", Completed: false},
				{ID: "a3", Text: "Review churn metrics next week", AssignedTo: "Sarah", Initials: "SJ", Color: "blue", DueDate: "Due Mon", Completed: true},
			},
		},
		{
			ID:           "m2",
			Title:        "Weekly Design Sync",
			Date:         "Oct 25, 2023",
			Time:         "10:00 AM",
			Duration:     "30 min",
			Status:       domain.StatusProcessed,
			Participants: people[:3],
		},
		{
			ID:           "m3",
			Title:        "Client Onboarding",
			Date:         "Oct 25, 2023",
			Time:         "11:00 AM",
			Duration:     "1h",
			Status:       domain.StatusProcessing,
			Participants: people[3:4],
		},
	}
}

// Load fills the library with the demo meetings. Inserts back-to-front so
// the library's most-recent-first order matches the declared order.
func Load(lib core.Library) error {
	ms := Meetings(Participants())
	for i := len(ms) - 1; i >= 0; i-- {
		if err := lib.Add(ms[i]); err != nil {
			return err
		}
	}
	log.Info().Str("module", "seed").Int("meetings", lib.Len()).Msg("seeded library")
	return nil
}
