package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	require.Equal(t, "orbitfund.probe-1.>", SubjectForDraft("probe-1"))
	require.Equal(t, "orbitfund.probe-1.submit.failed", SubjectForEvent("probe-1", "submit.failed"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	e, err := Open(ctx, dir)
	require.NoError(t, err)

	info, err := e.Stream.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, StreamName, info.Config.Name)
	require.Equal(t, Retention, info.Config.MaxAge)

	_, err = e.JS.Publish(ctx, SubjectForEvent("probe-1", "draft.opened"), []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, e.Close())

	// file storage survives a restart
	e, err = Open(ctx, dir)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	info, err = e.Stream.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.State.Msgs)
}

func TestShutdown_Nil(t *testing.T) {
	require.NoError(t, Shutdown(nil, nil))
}
