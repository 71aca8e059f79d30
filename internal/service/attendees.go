package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterAttendeeRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	e, ok := s.activeEventBySlug(ctx)
	if !ok {
		return
	}

	token := uuid.NewString()
	a := &model.Attendee{
		EventID:                e.ID,
		Name:                   req.Name,
		Email:                  strings.ToLower(req.Email),
		Phone:                  req.Phone,
		Organization:           req.Organization,
		JobTitle:               req.JobTitle,
		Roles:                  model.Roles{model.RoleAttendee},
		EmailVerificationToken: &token,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to hash password")
			dto.InternalServerError(ctx)
			return
		}
		a.PasswordHash = &hash
	}

	notify := outbox.Notify(s.cfg.OutboxQueue, outbox.TypeAttendeeVerify, func(id int64) any {
		return outbox.AttendeeVerifyPayload{AttendeeID: id}
	})
	if _, err := s.repo.RegisterAttendee(ctx, a, notify); err != nil {
		s.respondRepoError(ctx, err, "register attendee")
		return
	}

	s.log.Info().Int64("event_id", e.ID).Int64("attendee_id", a.ID).Msg("attendee registered")
	dto.SuccessCreatedResponse(ctx, dto.RegistrationResponse{Attendee: a, VerificationRequired: true})
}

func (s *service) VerifyEmail(ctx *ginext.Context) {
	token := ctx.Query("token")
	if token == "" {
		dto.BadResponseError(ctx, dto.TokenInvalid, "Verification token is missing")
		return
	}

	a, err := s.repo.VerifyAttendeeEmail(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrAttendeeNotFound) {
			dto.BadResponseError(ctx, dto.TokenInvalid, "Verification token is invalid or already used")
			return
		}
		s.respondRepoError(ctx, err, "verify attendee email")
		return
	}

	s.log.Info().Int64("attendee_id", a.ID).Msg("attendee email verified")
	dto.SuccessResponse(ctx, a)
}

func (s *service) AttendeeLogin(ctx *ginext.Context) {
	var req dto.LoginRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	a, err := s.repo.GetAttendeeByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repo.ErrAttendeeNotFound) {
		s.respondRepoError(ctx, err, "get attendee by email")
		return
	}
	if err != nil || a.PasswordHash == nil || auth.CheckPassword(*a.PasswordHash, req.Password) != nil {
		dto.UnauthorizedError(ctx, "Invalid email or password")
		return
	}
	if !a.IsVerified() {
		dto.ErrorResponse(ctx, http.StatusForbidden, dto.Forbidden, "Email address is not verified")
		return
	}

	s.issueToken(ctx, a.ID, auth.KindAttendee, a.Roles)
}

func (s *service) issueToken(ctx *ginext.Context, id int64, kind string, roles model.Roles) {
	token, expires, err := s.tokens.Sign(id, kind, roles)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign token")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.TokenResponse{Token: token, Kind: kind, ExpiresAt: expires})
}

func (s *service) CheckIn(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	a, err := s.repo.CheckInAttendee(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "check in attendee")
		return
	}

	s.log.Info().Int64("attendee_id", id).Int64("event_id", a.EventID).Msg("attendee checked in")
	dto.SuccessResponse(ctx, a)
}
