package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitfund/orbitfund/internal/api"
	"github.com/orbitfund/orbitfund/internal/draft"
	"github.com/orbitfund/orbitfund/internal/journal"
	"github.com/orbitfund/orbitfund/internal/nats"
	"github.com/orbitfund/orbitfund/internal/tui/wizard"
)

func TestDescribe(t *testing.T) {
	require.Equal(t, "boom", describe(errors.New("boom")))
	require.Equal(t, "Mission not found", describe(&api.APIError{Status: 404, Message: "Mission not found"}))
}

func TestHighlightJSON(t *testing.T) {
	out := highlightJSON(`{"title": "Relay"}`)
	require.Contains(t, out, "title")
	require.Contains(t, out, "Relay")
}

func TestFinish(t *testing.T) {
	a := testApp(t, "http://localhost:0/api")

	var out bytes.Buffer
	require.NoError(t, a.finish(testCmd(&out), &wizard.Result{Done: true, Message: "Mission updated successfully!"}))
	require.Equal(t, "Mission updated successfully!\n", out.String())

	out.Reset()
	require.NoError(t, a.finish(testCmd(&out), &wizard.Result{Cancelled: true}))
	require.Equal(t, "Draft discarded.\n", out.String())
}

func TestNewDraft_RecordsToJournal(t *testing.T) {
	ctx := context.Background()
	e, err := nats.Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	a := testApp(t, "http://localhost:0/api")
	a.journal = journal.NewStore(e.JS, e.Stream)

	mgr, err := a.newDraft(draft.ModeEdit, "42", "Lunar Relay")
	require.NoError(t, err)
	mgr.Opened(ctx)

	events, err := a.journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, journal.KindDraftOpened, events[0].Kind)
	require.Regexp(t, `^lunar-relay-[0-9a-f]{8}$`, events[0].Draft)
	require.Equal(t, "42", events[0].Meta["mission_id"])
}

func TestNewDraft_WithoutJournal(t *testing.T) {
	a := testApp(t, "http://localhost:0/api")
	mgr, err := a.newDraft(draft.ModeCreate, "", "")
	require.NoError(t, err)
	// no recorder configured: opening must not panic
	mgr.Opened(context.Background())
	require.Equal(t, draft.ModeCreate, mgr.Mode())
}
