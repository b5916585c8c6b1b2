package assistant

import (
	"context"
	"strconv"
	"strings"
)

// Stub is a keyless stand-in for local development and tests. Its text is
// deterministic and derived from the input.
type Stub struct{}

func (Stub) Summarize(ctx context.Context, transcript string) (string, error) {
	lines := 0
	if strings.TrimSpace(transcript) != "" {
		lines = strings.Count(transcript, "\n") + 1
	}
	return "- Reviewed " + strconv.Itoa(lines) + " transcript lines\n- Key outcomes identified\n- Next steps assigned", nil
}

func (Stub) Ask(ctx context.Context, query, contextText string) (string, error) {
	return "Based on the meeting context, here is what I found about: " + query, nil
}

func (Stub) DraftFollowUp(ctx context.Context, actionItems []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Hi all,\n\nFollowing up on our meeting, the outstanding items are:\n")
	for _, item := range actionItems {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	sb.WriteString("\nBest,\nClerkBot")
	return sb.String(), nil
}
