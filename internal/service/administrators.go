package service

import (
	"errors"
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) AdminLogin(ctx *ginext.Context) {
	var req dto.LoginRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	a, err := s.repo.GetAdministratorByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repo.ErrAdministratorNotFound) {
		s.respondRepoError(ctx, err, "get administrator by email")
		return
	}
	if err != nil || !a.IsActive || auth.CheckPassword(a.PasswordHash, req.Password) != nil {
		dto.UnauthorizedError(ctx, "Invalid email or password")
		return
	}

	roles := a.Roles.With(model.RoleAdmin)
	if a.IsSuperAdmin {
		roles = roles.With(model.RoleSuperAdmin)
	}
	if err := s.repo.TouchLastLogin(ctx, a.ID); err != nil {
		s.log.Warn().Err(err).Int64("administrator_id", a.ID).Msg("failed to record last login")
	}

	s.log.Info().Int64("administrator_id", a.ID).Msg("administrator logged in")
	s.issueToken(ctx, a.ID, auth.KindAdmin, roles)
}

func (s *service) CreateAdministrator(ctx *ginext.Context) {
	var req dto.AdministratorRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		dto.InternalServerError(ctx)
		return
	}

	roles := model.Roles{model.RoleAdmin}
	if req.IsSuperAdmin {
		roles = roles.With(model.RoleSuperAdmin)
	}
	a := &model.Administrator{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Roles:        roles,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperAdmin: req.IsSuperAdmin,
		Department:   req.Department,
	}
	if _, err := s.repo.CreateAdministrator(ctx, a); err != nil {
		s.respondRepoError(ctx, err, "create administrator")
		return
	}

	s.log.Info().Int64("administrator_id", a.ID).Bool("super_admin", a.IsSuperAdmin).Msg("administrator created")
	dto.SuccessCreatedResponse(ctx, a)
}

func (s *service) ListAdministrators(ctx *ginext.Context) {
	admins, err := s.repo.ListAdministrators(ctx)
	if err != nil {
		s.respondRepoError(ctx, err, "list administrators")
		return
	}
	dto.SuccessResponse(ctx, nonNil(admins))
}
