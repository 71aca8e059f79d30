package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/importer"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/rs/zerolog"
)

type Mailer interface {
	SendVerification(ctx context.Context, to, name, eventTitle, token string) error
	SendMessageNotification(ctx context.Context, to, recipientName, senderName, subject, eventTitle string) error
	SendImportFinished(ctx context.Context, to, originalName, status string, succeeded, failed int) error
}

type ImportRunner interface {
	Run(ctx context.Context, importID int64) (*model.EventImport, error)
}

type handlers struct {
	repo     repo.Repository
	mail     Mailer
	importer ImportRunner
	log      *zerolog.Logger
}

// RegisterHandlers wires the outbox message types to their handlers.
func RegisterHandlers(r *Reader, rp repo.Repository, mail Mailer, imp ImportRunner, log *zerolog.Logger) {
	h := &handlers{repo: rp, mail: mail, importer: imp, log: log}
	r.Handle(outbox.TypeAttendeeVerify, h.attendeeVerify)
	r.Handle(outbox.TypeMessageCreated, h.messageCreated)
	r.Handle(outbox.TypeImportRequested, h.importRequested)
}

// missing turns a not-found lookup into a permanent failure: the row is gone.
func missing(err error, sentinels ...error) error {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}
	}
	return err
}

func (h *handlers) attendeeVerify(ctx context.Context, payload json.RawMessage) error {
	var p outbox.AttendeeVerifyPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	a, err := h.repo.GetAttendeeByID(ctx, p.AttendeeID)
	if err != nil {
		return missing(err, repo.ErrAttendeeNotFound)
	}
	if a.IsVerified() || a.EmailVerificationToken == nil {
		h.log.Info().Int64("attendee_id", a.ID).Msg("⏳ Attendee already verified, skipping email")
		return nil
	}

	ev, err := h.repo.GetEventByID(ctx, a.EventID)
	if err != nil {
		return missing(err, repo.ErrEventNotFound)
	}

	if err := h.mail.SendVerification(ctx, a.Email, a.Name, ev.Title, *a.EmailVerificationToken); err != nil {
		return err
	}
	h.log.Info().Str("email", a.Email).Int64("attendee_id", a.ID).Msg("📧 Verification email sent")
	return nil
}

func (h *handlers) messageCreated(ctx context.Context, payload json.RawMessage) error {
	var p outbox.MessageCreatedPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	msg, err := h.repo.GetMessageByID(ctx, p.MessageID)
	if err != nil {
		return missing(err, repo.ErrMessageNotFound)
	}
	recipient, err := h.repo.GetAdministratorByID(ctx, msg.RecipientID)
	if err != nil {
		return missing(err, repo.ErrAdministratorNotFound)
	}
	sender, err := h.repo.GetAttendeeByID(ctx, msg.SenderID)
	if err != nil {
		return missing(err, repo.ErrAttendeeNotFound)
	}
	ev, err := h.repo.GetEventByID(ctx, msg.EventID)
	if err != nil {
		return missing(err, repo.ErrEventNotFound)
	}

	return h.mail.SendMessageNotification(ctx, recipient.Email, recipient.Name, sender.Name, msg.Subject, ev.Title)
}

func (h *handlers) importRequested(ctx context.Context, payload json.RawMessage) error {
	var p outbox.ImportRequestedPayload
	if err := decodePayload(payload, &p); err != nil {
		return err
	}

	imp, err := h.importer.Run(ctx, p.ImportID)
	if errors.Is(err, importer.ErrNotPending) {
		h.log.Info().Int64("import_id", p.ImportID).Msg("Import already processed, skipping")
		return nil
	}
	if err != nil {
		return missing(err, repo.ErrImportNotFound)
	}

	admin, err := h.repo.GetAdministratorByID(ctx, imp.CreatedByID)
	if err != nil {
		h.log.Warn().Err(err).Int64("import_id", imp.ID).Msg("Import creator not found, no notification sent")
		return nil
	}
	if err := h.mail.SendImportFinished(ctx, admin.Email, imp.OriginalName, imp.Status, imp.SuccessfulRows, imp.FailedRows); err != nil {
		// the import itself is stored; a redelivery would find it no longer pending
		h.log.Warn().Err(err).Int64("import_id", imp.ID).Msg("Failed to send import notification")
	}
	return nil
}
