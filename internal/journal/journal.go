// Package journal keeps a local, append-only history of draft activity on
// the embedded JetStream stream.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/orbitfund/orbitfund/internal/logger"
	"github.com/orbitfund/orbitfund/internal/nats"
)

// Event kinds written by the draft manager.
const (
	KindDraftOpened     = "draft.opened"
	KindSubmitAttempted = "submit.attempted"
	KindSubmitSucceeded = "submit.succeeded"
	KindSubmitFailed    = "submit.failed"
	KindSubmitBlocked   = "submit.blocked"
)

// Event is one journal entry.
type Event struct {
	Seq       uint64         `json:"-"`
	Timestamp time.Time      `json:"timestamp"`
	Draft     string         `json:"draft"`
	Kind      string         `json:"kind"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Summary is a one-line description of the event for listings.
func (e Event) Summary() string {
	parts := []string{}
	for _, k := range []string{"mode", "mission_id", "new_files", "message", "error", "reason"} {
		if v, ok := e.Meta[k]; ok && fmt.Sprint(v) != "" {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// Store publishes and reads journal events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	now    func() time.Time
}

// NewStore wraps a JetStream context and the event stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream, now: time.Now}
}

// DraftID names a draft: the slug of its title plus a short random suffix, so
// two drafts with the same title get separate subjects.
func DraftID(title string) string {
	base := slug.Make(title)
	if base == "" {
		base = "untitled"
	}
	if len(base) > 40 {
		base = strings.Trim(base[:40], "-")
	}
	return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Publish appends an event.
func (s *Store) Publish(ctx context.Context, e Event) (*jetstream.PubAck, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	subject := nats.SubjectForEvent(e.Draft, e.Kind)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("publishing %s: %w", subject, err)
	}
	logger.Debug("Journal event %s seq=%d", subject, ack.Sequence)
	return ack, nil
}

// List returns up to limit events, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Event, error) {
	info, err := s.stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stream info: %w", err)
	}
	if info.State.Msgs == 0 {
		return nil, nil
	}

	cfg := jetstream.ConsumerConfig{
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	}
	if limit > 0 && info.State.LastSeq > uint64(limit) {
		start := info.State.LastSeq - uint64(limit) + 1
		if start > info.State.FirstSeq {
			cfg.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
			cfg.OptStartSeq = start
		}
	}

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	const batchSize = 500
	var events []Event
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}
		n := 0
		for msg := range msgs.Messages() {
			n++
			var e Event
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				logger.Warn("Skipping malformed journal event on %s: %v", msg.Subject(), err)
				continue
			}
			if meta, err := msg.Metadata(); err == nil {
				e.Seq = meta.Sequence.Stream
			}
			events = append(events, e)
		}
		if n < batchSize {
			break
		}
	}

	slices.Reverse(events)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Recorder writes the events of one draft. It satisfies draft.Recorder.
type Recorder struct {
	store *Store
	draft string
}

// Recorder returns a recorder bound to draftID.
func (s *Store) Recorder(draftID string) *Recorder {
	return &Recorder{store: s, draft: draftID}
}

// DraftID returns the draft the recorder writes for.
func (r *Recorder) DraftID() string { return r.draft }

// Record publishes one event for the draft.
func (r *Recorder) Record(ctx context.Context, kind string, meta map[string]any) error {
	_, err := r.store.Publish(ctx, Event{Draft: r.draft, Kind: kind, Meta: meta})
	return err
}
