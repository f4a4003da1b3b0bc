package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbitfund/orbitfund/internal/logger"
)

// SubmitRequest is a submission prepared by BeginSubmit. Send only reads the
// request, so it can run off the goroutine owning the manager.
type SubmitRequest struct {
	Mode      Mode
	MissionID string
	Token     string
	Payload   *Payload

	transport Transport
}

// Send performs the network call.
func (r *SubmitRequest) Send(ctx context.Context) (string, error) {
	if r.Mode == ModeEdit {
		return r.transport.UpdateMission(ctx, r.Token, r.MissionID, r.Payload)
	}
	return r.transport.CreateSubmission(ctx, r.Token, r.Payload)
}

// BeginSubmit runs final-step validation, checks the credential, disables the
// submit control and builds the payload.
func (m *Manager) BeginSubmit(ctx context.Context) (*SubmitRequest, error) {
	if m.submitting {
		return nil, ErrSubmitInFlight
	}
	if m.opts.Transport == nil {
		return nil, fmt.Errorf("no transport configured")
	}

	if err := m.ValidateStep(len(m.sections)); err != nil {
		m.lastErr = err
		m.record(ctx, "submit.blocked", map[string]any{"reason": err.Error()})
		return nil, err
	}

	token := ""
	var credErr error
	if m.opts.Credentials != nil {
		token, credErr = m.opts.Credentials.Token()
	}
	if credErr != nil || token == "" {
		err := ErrAuthRequired
		meta := map[string]any{"reason": err.Error()}
		if credErr != nil && !errors.Is(credErr, ErrNoCredential) {
			logger.Warn("Reading credentials failed: %v", credErr)
			err = fmt.Errorf("%w: %w", ErrAuthRequired, credErr)
			meta["error"] = credErr.Error()
		}
		m.lastErr = err
		m.record(ctx, "submit.blocked", meta)
		return nil, err
	}

	payload, err := m.BuildSubmissionPayload()
	if err != nil {
		m.lastErr = err
		return nil, err
	}

	m.submitting = true
	m.lastErr = nil
	m.notice = ""

	meta := map[string]any{"new_files": len(payload.Files)}
	for _, c := range Categories {
		meta[c.DeleteField()] = m.deletions[c].Len()
	}
	m.record(ctx, "submit.attempted", meta)

	return &SubmitRequest{
		Mode:      m.opts.Mode,
		MissionID: m.opts.MissionID,
		Token:     token,
		Payload:   payload,
		transport: m.opts.Transport,
	}, nil
}

// FinishSubmit applies the outcome of Send. Success marks the draft done;
// failure keeps every staged file and re-enables the submit control.
func (m *Manager) FinishSubmit(ctx context.Context, message string, err error) {
	m.submitting = false
	if err != nil {
		m.lastErr = err
		logger.Warn("Submission failed: %v", err)
		m.record(ctx, "submit.failed", map[string]any{"error": DisplayError(m.opts.Mode, err)})
		return
	}
	m.done = true
	m.lastErr = nil
	m.notice = message
	if m.notice == "" {
		m.notice = m.successNotice()
	}
	logger.Info("Submission succeeded: %s", m.notice)
	m.record(ctx, "submit.succeeded", map[string]any{"message": m.notice})
}

// Submit runs BeginSubmit, Send and FinishSubmit in sequence.
func (m *Manager) Submit(ctx context.Context) (string, error) {
	req, err := m.BeginSubmit(ctx)
	if err != nil {
		return "", err
	}
	msg, err := req.Send(ctx)
	m.FinishSubmit(ctx, msg, err)
	return msg, err
}

func (m *Manager) successNotice() string {
	if m.opts.Mode == ModeEdit {
		return "Mission updated successfully!"
	}
	return "Your mission has been successfully launched and is awaiting review!"
}

func (m *Manager) submitLabel() string {
	switch {
	case m.opts.Mode == ModeEdit && m.submitting:
		return "Saving..."
	case m.opts.Mode == ModeEdit:
		return "Save Changes"
	case m.submitting:
		return "Launching..."
	default:
		return "Launch Mission 🚀"
	}
}

// displayer is implemented by transport errors that carry a user message.
type displayer interface {
	Display() string
}

// DisplayError turns an error into the message shown to the user.
func DisplayError(mode Mode, err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if errors.Is(err, ErrAuthRequired) {
		return "Authentication token not found. Please log in again."
	}
	var d displayer
	if errors.As(err, &d) {
		if mode == ModeEdit {
			return "Failed to update mission: " + d.Display()
		}
		return "Failed to launch mission: " + d.Display()
	}
	return err.Error()
}
