package domain

import (
	"errors"
	"fmt"
	"strings"
)

type (
	MeetingID    string
	ActionItemID string
)

// Status is the persisted processing state of a meeting. The capture
// workflow's intermediate stages are transient labels and never stored.
type Status string

const (
	StatusProcessed  Status = "PROCESSED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
)

var ErrUnknownStatus = errors.New("unknown meeting status")

// AllStatuses returns every valid status, in display order.
func AllStatuses() []Status {
	return []Status{StatusProcessed, StatusProcessing, StatusCompleted}
}

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(s)) {
	case StatusProcessed:
		return StatusProcessed, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// TranscriptEntry is one utterance, ordered by occurrence within a meeting.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Avatar  string `json:"avatar"`
	Time    string `json:"time"`
	Text    string `json:"text"`
	IsAI    bool   `json:"isAi,omitempty"`
}

// ActionItem is immutable except for the Completed flag.
type ActionItem struct {
	ID         ActionItemID `json:"id"`
	Text       string       `json:"text"`
	AssignedTo string       `json:"assignedTo"`
	Initials   string       `json:"initials"`
	Color      string       `json:"color"`
	DueDate    string       `json:"dueDate"`
	Completed  bool         `json:"completed"`
}

// Meeting owns its transcript and action-item sequences; participants are
// shared references, not owned.
type Meeting struct {
	ID           MeetingID         `json:"id"`
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	Duration     string            `json:"duration"`
	Status       Status            `json:"status"`
	Participants []*Participant    `json:"participants"`
	Summary      string            `json:"summary,omitempty"`
	Transcript   []TranscriptEntry `json:"transcript,omitempty"`
	ActionItems  []ActionItem      `json:"actionItems,omitempty"`
	Folder       string            `json:"folder,omitempty"`
}

// TranscriptText flattens the transcript into "Speaker: text" lines for
// assistant prompts.
func (m *Meeting) TranscriptText() string {
	var sb strings.Builder
	for i, e := range m.Transcript {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Speaker)
		sb.WriteString(": ")
		sb.WriteString(e.Text)
	}
	return sb.String()
}

// ActionItemTexts returns the bare item texts for follow-up drafting.
func (m *Meeting) ActionItemTexts() []string {
	out := make([]string, 0, len(m.ActionItems))
	for _, a := range m.ActionItems {
		out = append(out, a.Text)
	}
	return out
}
