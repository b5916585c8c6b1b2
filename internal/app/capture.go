// Package app coordinates in-flight capture operations between the HTTP
// surface, the meeting library and the live session collaborator.
package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
)

var (
	ErrWorkflowBusy    = errors.New("a capture workflow is already in flight")
	ErrNotReadyToSave  = errors.New("workflow has not reached the save step")
	ErrNothingToCancel = errors.New("no capture in flight")
)

// CaptureType is which surface initiated the capture.
type CaptureType string

const (
	CaptureRecord CaptureType = "record"
	CaptureImport CaptureType = "import"
	CaptureURL    CaptureType = "url"
)

// Stage is the transient processing state of one capture. Stages are
// UI-facing labels only; saved meetings always land as PROCESSED.
type Stage string

const (
	StageIdle         Stage = "IDLE"
	StageUploading    Stage = "UPLOADING"
	StageTranscribing Stage = "TRANSCRIBING"
	StageSummarizing  Stage = "SUMMARIZING"
	StageSuccess      Stage = "SUCCESS"
	StageFailed       Stage = "FAILED"
)

// Label is the user-facing text for each stage.
func (s Stage) Label() string {
	switch s {
	case StageUploading:
		return "Uploading..."
	case StageTranscribing:
		return "Transcribing audio..."
	case StageSummarizing:
		return "Generating AI Summary..."
	case StageSuccess:
		return "Success"
	case StageFailed:
		return "Processing failed"
	}
	return ""
}

func (s Stage) processing() bool {
	return s == StageUploading || s == StageTranscribing || s == StageSummarizing
}

// StageSchedule gives the offsets, from Start, at which the pipeline moves
// through its stages. The external transcription service this stands in for
// would drive these transitions with real completion events; the contract is
// only that success arrives after a bounded delay with three distinct
// intermediate labels.
type StageSchedule struct {
	Transcribe time.Duration
	Summarize  time.Duration
	Success    time.Duration
}

// DefaultSchedule matches the observed 1s/2s/3s staging.
func DefaultSchedule() StageSchedule {
	return StageSchedule{Transcribe: time.Second, Summarize: 2 * time.Second, Success: 3 * time.Second}
}

const placeholderSummary = "This is an automatically generated summary for your new recording. " +
	"Key decisions and topics have been identified and organized for your review."

const seedTranscriptLine = "Starting the meeting now to discuss our recent updates and the next steps for the project."

// Snapshot is a read-only view of one workflow for the status endpoint.
type Snapshot struct {
	Stage   Stage       `json:"stage"`
	Label   string      `json:"label,omitempty"`
	Capture CaptureType `json:"capture_type,omitempty"`
	Source  string      `json:"source,omitempty"`
	Failure string      `json:"failure,omitempty"`
}

// CaptureWorkflow models one in-flight "capture a new meeting" operation.
// Only one may be active per client; Save is the only transition that
// touches the library.
type CaptureWorkflow struct {
	library core.Library
	user    *domain.Participant
	clock   Clock
	sched   StageSchedule

	mu      sync.Mutex
	stage   Stage
	capture CaptureType
	source  string
	failure error
	gen     int
	timers  []Timer
}

func NewCaptureWorkflow(library core.Library, user *domain.Participant, clock Clock, sched StageSchedule) *CaptureWorkflow {
	return &CaptureWorkflow{
		library: library,
		user:    user,
		clock:   clock,
		sched:   sched,
		stage:   StageIdle,
	}
}

// StartImport begins the staged processing pipeline for an uploaded file.
// Record and URL captures never enter this machine: record hands off to a
// live session immediately and URL joins go through the connect flow.
func (w *CaptureWorkflow) StartImport(filename string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageIdle && w.stage != StageFailed {
		return ErrWorkflowBusy
	}

	w.stage = StageUploading
	w.capture = CaptureImport
	w.source = filename
	w.failure = nil
	w.gen++
	g := w.gen
	w.timers = []Timer{
		w.clock.AfterFunc(w.sched.Transcribe, func() { w.advance(g, StageTranscribing) }),
		w.clock.AfterFunc(w.sched.Summarize, func() { w.advance(g, StageSummarizing) }),
		w.clock.AfterFunc(w.sched.Success, func() { w.advance(g, StageSuccess) }),
	}
	log.Info().Str("module", "app.capture").Str("file", filename).Msg("import capture started")
	return nil
}

// advance moves the pipeline forward. Timers from a canceled or failed run
// carry a stale generation and are ignored.
func (w *CaptureWorkflow) advance(gen int, next Stage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen || !w.stage.processing() {
		return
	}
	w.stage = next
	log.Info().Str("module", "app.capture").Str("stage", string(next)).Msg("capture advanced")
}

// Fail marks an in-flight capture as failed. The failure is retryable: a new
// StartImport is allowed from the failed stage.
func (w *CaptureWorkflow) Fail(cause error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stage.processing() {
		return
	}
	w.stopTimersLocked()
	w.stage = StageFailed
	w.failure = cause
	log.Warn().Err(cause).Str("module", "app.capture").Msg("capture failed")
}

// Cancel discards timers and returns to idle without touching the library.
func (w *CaptureWorkflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage == StageIdle {
		return ErrNothingToCancel
	}
	w.resetLocked()
	log.Info().Str("module", "app.capture").Msg("capture canceled")
	return nil
}

// Save confirms the processed capture and appends the meeting to the
// library. It is the terminal transition: on success the machine is idle
// again and the new meeting is handed back for navigation.
func (w *CaptureWorkflow) Save(folder string) (domain.Meeting, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageSuccess {
		return domain.Meeting{}, ErrNotReadyToSave
	}

	m := w.buildMeeting(folder, w.clock.Now())
	if err := w.library.Add(m); err != nil {
		if !errors.Is(err, core.ErrDuplicateID) {
			return domain.Meeting{}, err
		}
		// Millisecond ids collide under rapid successive saves; regenerate
		// once with a random suffix and retry.
		m.ID = domain.MeetingID(fmt.Sprintf("%s-%s", m.ID, uuid.NewString()[:8]))
		if err := w.library.Add(m); err != nil {
			return domain.Meeting{}, err
		}
	}

	w.resetLocked()
	log.Info().Str("module", "app.capture").Str("id", string(m.ID)).Str("folder", folder).Msg("capture saved")
	return m, nil
}

func (w *CaptureWorkflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Stage:   w.stage,
		Label:   w.stage.Label(),
		Capture: w.capture,
		Source:  w.source,
	}
	if w.failure != nil {
		s.Failure = w.failure.Error()
	}
	return s
}

func (w *CaptureWorkflow) buildMeeting(folder string, now time.Time) domain.Meeting {
	// Millisecond-resolution ids are the observed scheme. The collision
	// window is real; Save retries with a random suffix when it hits.
	id := domain.MeetingID(fmt.Sprintf("m-new-%d", now.UnixMilli()))
	title := fmt.Sprintf("New %s [%s]", capitalize(string(w.capture)), now.Format("1/2/2006"))
	return domain.Meeting{
		ID:           id,
		Title:        title,
		Date:         now.Format("Jan 2, 2006"),
		Time:         now.Format("03:04 PM"),
		Duration:     "0 min",
		Status:       domain.StatusProcessed,
		Participants: []*domain.Participant{w.user},
		Folder:       folder,
		Summary:      placeholderSummary,
		Transcript: []domain.TranscriptEntry{
			{Speaker: w.user.Name, Avatar: w.user.Avatar, Time: "00:01", Text: seedTranscriptLine},
		},
		ActionItems: []domain.ActionItem{},
	}
}

func (w *CaptureWorkflow) stopTimersLocked() {
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.gen++
}

func (w *CaptureWorkflow) resetLocked() {
	w.stopTimersLocked()
	w.stage = StageIdle
	w.capture = ""
	w.source = ""
	w.failure = nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
