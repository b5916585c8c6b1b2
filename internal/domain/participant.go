// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxNameLen = 64

var (
	ErrNameTooLong = errors.New("participant name too long")
	ErrNameEmpty   = errors.New("participant name empty")
)

type ParticipantID string

// Participant is a person appearing in meetings. Identity is ID; the same
// Participant may be shared by reference across many meetings.
type Participant struct {
	ID     ParticipantID `json:"id"`
	Name   string        `json:"name"`
	Avatar string        `json:"avatar"`
	Role   string        `json:"role,omitempty"`
}

func (p *Participant) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}

// FirstName is used for greetings ("Good morning, Isabella").
func (p *Participant) FirstName() string {
	for i := 0; i < len(p.Name); i++ {
		if p.Name[i] == ' ' {
			return p.Name[:i]
		}
	}
	return p.Name
}
