package service

import (
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) CreatePresenter(ctx *ginext.Context) {
	var req dto.PresenterRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	p := &model.Presenter{
		Name:          req.Name,
		Email:         req.Email,
		Title:         req.Title,
		Company:       req.Company,
		Bio:           req.Bio,
		Website:       req.Website,
		LinkedIn:      req.LinkedIn,
		Twitter:       req.Twitter,
		PhotoFilename: req.PhotoFilename,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if _, err := s.repo.CreatePresenter(ctx, p); err != nil {
		s.respondRepoError(ctx, err, "create presenter")
		return
	}

	s.log.Info().Int64("presenter_id", p.ID).Msg("presenter created")
	dto.SuccessCreatedResponse(ctx, p)
}

func (s *service) ListPresenters(ctx *ginext.Context) {
	presenters, err := s.repo.ListPresenters(ctx)
	if err != nil {
		s.respondRepoError(ctx, err, "list presenters")
		return
	}
	dto.SuccessResponse(ctx, nonNil(presenters))
}

func (s *service) AttachPresenter(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AttachPresenterRequest
	if !s.bindJSON(ctx, &req) {
		return
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		dto.FieldIncorrectError(ctx, "end_time")
		return
	}

	ep := &model.EventPresenter{
		EventID:                 eventID,
		PresenterID:             req.PresenterID,
		PresentationTitle:       req.PresentationTitle,
		PresentationDescription: req.PresentationDescription,
		StartTime:               req.StartTime,
		EndTime:                 req.EndTime,
		IsVisible:               req.IsVisible == nil || *req.IsVisible,
		SortOrder:               req.SortOrder,
	}
	if _, err := s.repo.AttachPresenter(ctx, ep); err != nil {
		s.respondRepoError(ctx, err, "attach presenter")
		return
	}

	s.log.Info().Int64("event_id", eventID).Int64("presenter_id", req.PresenterID).Msg("presenter attached to event")
	dto.SuccessCreatedResponse(ctx, ep)
}
