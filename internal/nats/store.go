package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Journal subjects follow "orbitfund.<draft>.<kind>", where draft is the
// journal draft id and kind may itself contain dots ("submit.failed").
const (
	// StreamName is the JetStream stream holding every journal event.
	StreamName = "orbitfund_events"
	// Retention is how long journal events are kept.
	Retention = 90 * 24 * time.Hour
)

// SubjectForDraft matches every event of one draft.
// Example: "orbitfund.europa-ice-probe-1a2b3c4d.>"
func SubjectForDraft(draft string) string {
	return fmt.Sprintf("orbitfund.%s.>", draft)
}

// SubjectForEvent is the subject one event is published on.
// Example: "orbitfund.europa-ice-probe-1a2b3c4d.submit.failed"
func SubjectForEvent(draft, kind string) string {
	return fmt.Sprintf("orbitfund.%s.%s", draft, kind)
}

// SetupStream creates or updates the journal stream. One stream captures the
// events of every draft; subject orbitfund.> matches all drafts and kinds.
// Events are stored on disk and expire after Retention, so the history
// survives restarts without growing forever.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"orbitfund.>"}, // every draft, every kind
		Storage:  jetstream.FileStorage,
		MaxAge:   Retention,
	})
}
