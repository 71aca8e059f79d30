package service

import (
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) SendMessage(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	sender, err := s.repo.GetAttendeeByID(ctx, claims.SubID)
	if err != nil {
		s.respondRepoError(ctx, err, "get sender")
		return
	}

	// Attendees may only write to administrators of their own event.
	allowed, err := s.repo.IsEventAdministrator(ctx, sender.EventID, req.RecipientID)
	if err != nil {
		s.respondRepoError(ctx, err, "check event administrator")
		return
	}
	if !allowed {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Recipient is not an administrator of your event")
		return
	}

	if req.ReplyToID != nil {
		parent, err := s.repo.GetMessageByID(ctx, *req.ReplyToID)
		if err != nil {
			s.respondRepoError(ctx, err, "get replied message")
			return
		}
		if parent.EventID != sender.EventID {
			dto.FieldIncorrectError(ctx, "reply_to_id")
			return
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	m := &model.Message{
		SenderID:    sender.ID,
		RecipientID: req.RecipientID,
		EventID:     sender.EventID,
		ReplyToID:   req.ReplyToID,
		Subject:     req.Subject,
		Content:     req.Content,
		Status:      model.MessageSent,
		Priority:    priority,
	}

	notify := outbox.Notify(s.cfg.OutboxQueue, outbox.TypeMessageCreated, func(id int64) any {
		return outbox.MessageCreatedPayload{MessageID: id}
	})
	if _, err := s.repo.CreateMessage(ctx, m, notify); err != nil {
		s.respondRepoError(ctx, err, "create message")
		return
	}

	s.log.Info().Int64("message_id", m.ID).Int64("sender_id", m.SenderID).Int64("recipient_id", m.RecipientID).
		Msg("message sent")
	dto.SuccessCreatedResponse(ctx, m)
}

func (s *service) ListSentMessages(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}
	messages, err := s.repo.ListMessagesBySender(ctx, claims.SubID)
	if err != nil {
		s.respondRepoError(ctx, err, "list sent messages")
		return
	}
	dto.SuccessResponse(ctx, nonNil(messages))
}

func (s *service) Inbox(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}
	messages, err := s.repo.ListMessagesByRecipient(ctx, claims.SubID, ctx.Query("unread") == "true")
	if err != nil {
		s.respondRepoError(ctx, err, "list inbox")
		return
	}
	dto.SuccessResponse(ctx, nonNil(messages))
}

func (s *service) MarkMessageRead(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	m, err := s.repo.MarkMessageRead(ctx, id, claims.SubID)
	if err != nil {
		s.respondRepoError(ctx, err, "mark message read")
		return
	}
	dto.SuccessResponse(ctx, m)
}
