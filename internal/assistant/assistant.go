// Package assistant is the gateway to the generative-text collaborator used
// for summaries, Q&A and follow-up drafts.
package assistant

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any failure to get a real answer out of the
// collaborator. Callers decide what fallback text, if any, to show; the
// gateway never masks a failure as content.
var ErrUnavailable = errors.New("assistant unavailable")

// Assistant is a single request/response contract, no streaming.
type Assistant interface {
	// Summarize condenses a transcript into a few bullet points.
	Summarize(ctx context.Context, transcript string) (string, error)
	// Ask answers a question using only the supplied meeting context.
	Ask(ctx context.Context, query, contextText string) (string, error)
	// DraftFollowUp writes a follow-up email from action item texts.
	DraftFollowUp(ctx context.Context, actionItems []string) (string, error)
}
