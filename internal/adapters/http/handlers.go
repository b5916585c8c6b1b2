package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/app"
	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
)

// Fixed fallback texts shown when the assistant collaborator is down. The
// gateway reports a real error; only this layer turns it into copy, so
// failure detection never depends on string comparison.
const (
	fallbackSummary = "Failed to generate summary."
	fallbackChat    = "I'm sorry, I couldn't process that request right now."
	fallbackDraft   = "Failed to generate draft."
)

type handlers struct {
	deps Deps

	// mu guards renames of the current user against concurrent reads.
	mu sync.RWMutex
}

// greeting mirrors the dashboard salutation ("Good morning, Isabella").
func greeting(hour int, firstName string) string {
	switch {
	case hour < 12:
		return "Good morning, " + firstName
	case hour < 18:
		return "Good afternoon, " + firstName
	default:
		return "Good evening, " + firstName
	}
}

func (h *handlers) me(c *gin.Context) {
	h.mu.RLock()
	u := *h.deps.User
	h.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{
		"user":     u,
		"greeting": greeting(time.Now().Hour(), u.FirstName()),
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

// updateMe renames the current user. The participant is shared by reference,
// so the new name shows up on meetings the user appears in.
func (h *handlers) updateMe(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	h.mu.Lock()
	err := h.deps.User.SetName(req.Name)
	u := *h.deps.User
	h.mu.Unlock()

	switch {
	case errors.Is(err, domain.ErrNameEmpty), errors.Is(err, domain.ErrNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

func (h *handlers) folders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"folders":  h.deps.Folders,
		"reserved": []string{core.FolderAll, core.FolderShared, core.FolderTrash},
	})
}

func (h *handlers) listMeetings(c *gin.Context) {
	f := core.Filter{
		Query:  c.Query("q"),
		Folder: c.DefaultQuery("folder", core.FolderAll),
	}
	if raw, ok := c.GetQuery("status"); ok {
		f.Statuses = []domain.Status{}
		for _, part := range strings.Split(raw, ",") {
			if part == "" {
				continue
			}
			s, err := domain.ParseStatus(part)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			f.Statuses = append(f.Statuses, s)
		}
	}

	meetings := core.Apply(h.deps.Library.List(), f)
	c.JSON(http.StatusOK, gin.H{"meetings": meetings, "total": len(meetings)})
}

func (h *handlers) getMeeting(c *gin.Context) {
	m, ok := h.deps.Library.Get(domain.MeetingID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

type actionItemRequest struct {
	Completed bool `json:"completed"`
}

func (h *handlers) setActionItem(c *gin.Context) {
	var req actionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	err := h.deps.Library.SetActionItemDone(
		domain.MeetingID(c.Param("id")),
		domain.ActionItemID(c.Param("itemID")),
		req.Completed,
	)
	switch {
	case errors.Is(err, core.ErrMeetingNotFound), errors.Is(err, core.ErrActionItemMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

type captureRequest struct {
	Type string `json:"type"`
	File string `json:"file"`
	URL  string `json:"url"`
}

func (h *handlers) startCapture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid capture type"})
		return
	}
	flows := h.deps.Flows.For(c.GetString("client_token"))

	switch app.CaptureType(req.Type) {
	case app.CaptureRecord:
		// Recording skips the processing pipeline entirely: straight to a
		// live session.
		sess := h.deps.Sessions.Open("Live recording")
		c.JSON(http.StatusCreated, gin.H{"mode": "live", "session": sess.ID()})
	case app.CaptureImport:
		file := req.File
		if file == "" {
			file = "upload"
		}
		if err := flows.Capture.StartImport(file); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, flows.Capture.Snapshot())
	case app.CaptureURL:
		err := flows.Connect.Start(req.URL)
		switch {
		case errors.Is(err, app.ErrEmptyURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app.ErrConnectBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusAccepted, flows.Connect.Snapshot())
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid capture type"})
	}
}

func (h *handlers) captureStatus(c *gin.Context) {
	flows := h.deps.Flows.For(c.GetString("client_token"))
	c.JSON(http.StatusOK, gin.H{
		"capture": flows.Capture.Snapshot(),
		"connect": flows.Connect.Snapshot(),
	})
}

type saveRequest struct {
	Folder string `json:"folder"`
}

func (h *handlers) saveCapture(c *gin.Context) {
	var req saveRequest
	// An empty body is fine: it means "use the default folder".
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	folder := req.Folder
	if folder == "" {
		folder = h.deps.Default
	}

	flows := h.deps.Flows.For(c.GetString("client_token"))
	m, err := flows.Capture.Save(folder)
	if err != nil {
		if errors.Is(err, app.ErrNotReadyToSave) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// joinConnected claims the session a finished URL-join produced, resetting
// the connect flow for the next one.
func (h *handlers) joinConnected(c *gin.Context) {
	flows := h.deps.Flows.For(c.GetString("client_token"))
	id, ok := flows.Connect.Claim()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "not connected yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": "live", "session": id})
}

func (h *handlers) cancelCapture(c *gin.Context) {
	flows := h.deps.Flows.For(c.GetString("client_token"))
	_ = flows.Capture.Cancel()
	flows.Connect.Cancel()
	c.Status(http.StatusNoContent)
}

type chatRequest struct {
	Query     string `json:"query"`
	MeetingID string `json:"meeting_id"`
}

func (h *handlers) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or empty query"})
		return
	}

	contextText, ok := h.chatContext(req.MeetingID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}

	text, err := h.deps.Assistant.Ask(c.Request.Context(), req.Query, contextText)
	degraded := false
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("assistant chat failed")
		text = fallbackChat
		degraded = true
	}

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    domain.SenderBot,
		Text:      text,
		Timestamp: time.Now().Format("3:04 PM"),
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "degraded": degraded})
}

// chatContext assembles the text the assistant is allowed to answer from:
// one meeting's transcript, or the whole library's summaries when no meeting
// is named.
func (h *handlers) chatContext(meetingID string) (string, bool) {
	if meetingID != "" {
		m, ok := h.deps.Library.Get(domain.MeetingID(meetingID))
		if !ok {
			return "", false
		}
		return m.TranscriptText(), true
	}
	var sb strings.Builder
	for _, m := range h.deps.Library.List() {
		sb.WriteString(m.Title)
		if m.Summary != "" {
			sb.WriteString(": ")
			sb.WriteString(m.Summary)
		}
		sb.WriteString("\n")
	}
	return sb.String(), true
}

func (h *handlers) summarize(c *gin.Context) {
	m, ok := h.deps.Library.Get(domain.MeetingID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	if len(m.Transcript) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "meeting has no transcript"})
		return
	}

	summary, err := h.deps.Assistant.Summarize(c.Request.Context(), m.TranscriptText())
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("assistant summarize failed")
		c.JSON(http.StatusOK, gin.H{"summary": fallbackSummary, "degraded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "degraded": false})
}

func (h *handlers) followUp(c *gin.Context) {
	m, ok := h.deps.Library.Get(domain.MeetingID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	if len(m.ActionItems) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "meeting has no action items"})
		return
	}

	draft, err := h.deps.Assistant.DraftFollowUp(c.Request.Context(), m.ActionItemTexts())
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("assistant follow-up failed")
		c.JSON(http.StatusOK, gin.H{"draft": fallbackDraft, "degraded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "degraded": false})
}
