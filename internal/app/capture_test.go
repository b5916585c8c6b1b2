package app_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ianderson/ClerkBot/internal/app"
	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
	"github.com/ianderson/ClerkBot/internal/live"
)

// fakeClock drives the staged pipeline deterministically. Timers fire
// synchronously from Advance, in scheduling order.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2023, 10, 26, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) app.Timer {
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			t.fn()
		}
	}
}

func testUser() *domain.Participant {
	return &domain.Participant{ID: "u1", Name: "Isabella Anderson", Avatar: "https://picsum.photos/id/100/64/64", Role: "Product Lead"}
}

func newWorkflow(t *testing.T) (*app.CaptureWorkflow, core.Library, *fakeClock) {
	t.Helper()
	lib := core.NewLibrary()
	clock := newFakeClock()
	w := app.NewCaptureWorkflow(lib, testUser(), clock, app.DefaultSchedule())
	return w, lib, clock
}

func TestCaptureStageProgression(t *testing.T) {
	w, _, clock := newWorkflow(t)

	assert.Equal(t, app.StageIdle, w.Snapshot().Stage)
	require.NoError(t, w.StartImport("standup.mp4"))
	assert.Equal(t, app.StageUploading, w.Snapshot().Stage)
	assert.Equal(t, "Uploading...", w.Snapshot().Label)

	clock.Advance(time.Second)
	assert.Equal(t, app.StageTranscribing, w.Snapshot().Stage)
	assert.Equal(t, "Transcribing audio...", w.Snapshot().Label)

	clock.Advance(time.Second)
	assert.Equal(t, app.StageSummarizing, w.Snapshot().Stage)
	assert.Equal(t, "Generating AI Summary...", w.Snapshot().Label)

	clock.Advance(time.Second)
	assert.Equal(t, app.StageSuccess, w.Snapshot().Stage)
	assert.Equal(t, "Success", w.Snapshot().Label)
}

func TestCaptureBusyRejection(t *testing.T) {
	w, _, _ := newWorkflow(t)

	require.NoError(t, w.StartImport("a.mp4"))
	err := w.StartImport("b.mp4")
	assert.ErrorIs(t, err, app.ErrWorkflowBusy)
}

func TestCaptureSaveInvariant(t *testing.T) {
	w, lib, clock := newWorkflow(t)

	require.NoError(t, w.StartImport("standup.mp4"))
	clock.Advance(3 * time.Second)

	before := lib.Len()
	m, err := w.Save("Engineering Syncs")
	require.NoError(t, err)

	assert.Equal(t, before+1, lib.Len())
	assert.Equal(t, domain.StatusProcessed, m.Status)
	assert.Equal(t, "Engineering Syncs", m.Folder)
	require.Len(t, m.Participants, 1)
	assert.Equal(t, domain.ParticipantID("u1"), m.Participants[0].ID)
	assert.Len(t, m.Transcript, 1)
	assert.Equal(t, "0 min", m.Duration)
	assert.Equal(t, "New Import [10/26/2023]", m.Title)
	assert.Equal(t, "Oct 26, 2023", m.Date)
	assert.True(t, len(m.ID) > 0 && m.ID[:6] == "m-new-")

	// Terminal: the machine is idle again and the meeting sits at the front.
	assert.Equal(t, app.StageIdle, w.Snapshot().Stage)
	assert.Equal(t, m.ID, lib.List()[0].ID)
}

func TestCaptureSaveBeforeSuccess(t *testing.T) {
	w, _, clock := newWorkflow(t)

	require.NoError(t, w.StartImport("standup.mp4"))
	clock.Advance(time.Second)

	_, err := w.Save("Product Team")
	assert.ErrorIs(t, err, app.ErrNotReadyToSave)
}

func TestCaptureCancelLeavesLibraryUntouched(t *testing.T) {
	w, lib, clock := newWorkflow(t)

	require.NoError(t, w.StartImport("standup.mp4"))
	require.NoError(t, w.Cancel())
	assert.Equal(t, app.StageIdle, w.Snapshot().Stage)

	// Stale timers must not resurrect the run.
	clock.Advance(5 * time.Second)
	assert.Equal(t, app.StageIdle, w.Snapshot().Stage)
	assert.Equal(t, 0, lib.Len())

	assert.ErrorIs(t, w.Cancel(), app.ErrNothingToCancel)
}

func TestCaptureDuplicateIDRetry(t *testing.T) {
	w, lib, clock := newWorkflow(t)

	require.NoError(t, w.StartImport("standup.mp4"))
	clock.Advance(3 * time.Second)

	// Occupy the id the workflow is about to generate.
	taken := domain.MeetingID(fmt.Sprintf("m-new-%d", clock.Now().UnixMilli()))
	require.NoError(t, lib.Add(domain.Meeting{ID: taken, Title: "squatter", Status: domain.StatusProcessed}))

	m, err := w.Save("Product Team")
	require.NoError(t, err)
	assert.NotEqual(t, taken, m.ID)
	assert.Contains(t, string(m.ID), string(taken)+"-")
	assert.Equal(t, 2, lib.Len())
}

func TestCaptureFailIsRetryable(t *testing.T) {
	w, _, clock := newWorkflow(t)

	require.NoError(t, w.StartImport("standup.mp4"))
	w.Fail(errors.New("upload interrupted"))

	snap := w.Snapshot()
	assert.Equal(t, app.StageFailed, snap.Stage)
	assert.Equal(t, "upload interrupted", snap.Failure)

	// Timers of the failed run must be dead.
	clock.Advance(5 * time.Second)
	assert.Equal(t, app.StageFailed, w.Snapshot().Stage)

	require.NoError(t, w.StartImport("standup.mp4"))
	assert.Equal(t, app.StageUploading, w.Snapshot().Stage)
	assert.Empty(t, w.Snapshot().Failure)
}

func TestConnectFlow(t *testing.T) {
	clock := newFakeClock()
	sessions := live.NewRegistry()
	f := app.NewConnectFlow(sessions, clock, 1500*time.Millisecond)

	assert.ErrorIs(t, f.Start("   "), app.ErrEmptyURL)

	require.NoError(t, f.Start("https://meet.example.com/abc"))
	assert.Equal(t, app.Connecting, f.Snapshot().Stage)
	assert.ErrorIs(t, f.Start("https://meet.example.com/other"), app.ErrConnectBusy)

	_, ok := f.Claim()
	assert.False(t, ok)

	clock.Advance(1500 * time.Millisecond)
	snap := f.Snapshot()
	require.Equal(t, app.ConnectedStage, snap.Stage)

	id, ok := f.Claim()
	require.True(t, ok)
	_, found := sessions.Get(id)
	assert.True(t, found)

	// Claim is a hand-off: the flow is reusable afterwards.
	assert.Equal(t, app.ConnectIdle, f.Snapshot().Stage)
	require.NoError(t, f.Start("https://meet.example.com/next"))
}

func TestConnectCancel(t *testing.T) {
	clock := newFakeClock()
	sessions := live.NewRegistry()
	f := app.NewConnectFlow(sessions, clock, 1500*time.Millisecond)

	require.NoError(t, f.Start("https://meet.example.com/abc"))
	f.Cancel()
	clock.Advance(2 * time.Second)

	assert.Equal(t, app.ConnectIdle, f.Snapshot().Stage)
	assert.Empty(t, sessions.List())
}

func TestRegistryPerClient(t *testing.T) {
	lib := core.NewLibrary()
	reg := app.NewRegistry(lib, testUser(), live.NewRegistry(), newFakeClock(), app.DefaultSchedule(), 1500*time.Millisecond)

	a := reg.For("ct-a")
	assert.Same(t, a, reg.For("ct-a"))
	assert.NotSame(t, a, reg.For("ct-b"))
}
