package journal

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/nats"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	e, err := nats.Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to start NATS: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return NewStore(e.JS, e.Stream)
}

func TestDraftID(t *testing.T) {
	id := DraftID("Europa Ice Probe!")
	require.Regexp(t, regexp.MustCompile(`^europa-ice-probe-[0-9a-f]{8}$`), id)
	require.NotEqual(t, id, DraftID("Europa Ice Probe!"))

	require.Regexp(t, `^untitled-[0-9a-f]{8}$`, DraftID("  "))

	long := DraftID("a very long mission title that keeps going well past forty characters")
	require.LessOrEqual(t, len(long), 40+9)
}

func TestList_Empty(t *testing.T) {
	s := openStore(t)
	events, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	rec := s.Recorder("probe-1")

	kinds := []string{KindDraftOpened, KindSubmitAttempted, KindSubmitFailed, KindSubmitAttempted, KindSubmitSucceeded}
	for _, k := range kinds {
		require.NoError(t, rec.Record(ctx, k, map[string]any{"mode": "create"}))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, KindSubmitSucceeded, all[0].Kind)
	require.Equal(t, KindDraftOpened, all[4].Kind)
	require.Greater(t, all[0].Seq, all[1].Seq)
	require.Equal(t, "probe-1", all[0].Draft)
	require.False(t, all[0].Timestamp.IsZero())

	last2, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	require.Equal(t, KindSubmitSucceeded, last2[0].Kind)
	require.Equal(t, KindSubmitAttempted, last2[1].Kind)

	many, err := s.List(ctx, 50)
	require.NoError(t, err)
	require.Len(t, many, 5)
}

func TestRecorder_WithManager(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	rec := s.Recorder(DraftID("Relay"))

	m, err := draft.New(draft.Options{Mode: draft.ModeEdit, MissionID: "12", Recorder: rec})
	require.NoError(t, err)
	m.Opened(ctx)

	// no credential and no transport: submit is refused before sending
	_, err = m.Submit(ctx)
	require.Error(t, err)

	events, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, KindDraftOpened, events[0].Kind)
	require.Equal(t, "edit", events[0].Meta["mode"])
	require.Equal(t, "12", events[0].Meta["mission_id"])
	require.Equal(t, "mode=edit mission_id=12", events[0].Summary())
}
