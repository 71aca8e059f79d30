package service

import (
	"context"
	"errors"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/recurrence"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/bayworx/event-management-system-sub001/internal/slug"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) eventResponse(ctx context.Context, e *model.Event) (dto.EventResponse, error) {
	html, err := renderMarkdown(e.Description)
	if err != nil {
		s.log.Warn().Err(err).Int64("event_id", e.ID).Msg("failed to render description")
	}

	count, err := s.repo.CountAttendees(ctx, e.ID)
	if err != nil {
		return dto.EventResponse{}, err
	}

	resp := dto.EventResponse{Event: *e, DescriptionHTML: html, AttendeeCount: count}
	if e.MaxAttendees != nil {
		seats := *e.MaxAttendees - count
		if seats < 0 {
			seats = 0
		}
		resp.AvailableSeats = &seats
	}
	return resp, nil
}

func (s *service) eventDetail(ctx context.Context, e *model.Event, public bool) (*dto.EventDetailResponse, error) {
	base, err := s.eventResponse(ctx, e)
	if err != nil {
		return nil, err
	}
	agenda, err := s.repo.ListAgendaItems(ctx, e.ID, public)
	if err != nil {
		return nil, err
	}
	presenters, err := s.repo.ListEventPresenters(ctx, e.ID, public)
	if err != nil {
		return nil, err
	}
	children, err := s.repo.ListChildEvents(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if public {
		active := children[:0]
		for _, c := range children {
			if c.IsActive {
				active = append(active, c)
			}
		}
		children = active
	}

	return &dto.EventDetailResponse{
		EventResponse: base,
		Agenda:        nonNil(agenda),
		Presenters:    nonNil(presenters),
		Occurrences:   nonNil(children),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *service) listEvents(ctx *ginext.Context, activeOnly bool) {
	events, err := s.repo.ListEvents(ctx, activeOnly)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		item, err := s.eventResponse(ctx, &events[i])
		if err != nil {
			s.log.Error().Err(err).Int64("event_id", events[i].ID).Msg("failed to count attendees for event")
			continue
		}
		resp = append(resp, item)
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListEvents(ctx *ginext.Context) {
	s.listEvents(ctx, true)
}

func (s *service) AdminListEvents(ctx *ginext.Context) {
	s.listEvents(ctx, false)
}

// activeEventBySlug loads an event visible to the public, writing a 404 otherwise.
func (s *service) activeEventBySlug(ctx *ginext.Context) (*model.Event, bool) {
	e, err := s.repo.GetEventBySlug(ctx, ctx.Param("slug"))
	if err == nil && !e.IsActive {
		err = repo.ErrEventNotFound
	}
	if err != nil {
		s.respondRepoError(ctx, err, "get event by slug")
		return nil, false
	}
	return e, true
}

func (s *service) GetEvent(ctx *ginext.Context) {
	e, ok := s.activeEventBySlug(ctx)
	if !ok {
		return
	}
	resp, err := s.eventDetail(ctx, e, true)
	if err != nil {
		s.respondRepoError(ctx, err, "load event detail")
		return
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) AdminGetEvent(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	e, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get event")
		return
	}
	resp, err := s.eventDetail(ctx, e, false)
	if err != nil {
		s.respondRepoError(ctx, err, "load event detail")
		return
	}
	dto.SuccessResponse(ctx, resp)
}

// applyEventRequest copies the request onto e. An empty slug leaves e.Slug untouched.
func applyEventRequest(e *model.Event, req *dto.EventRequest) {
	e.Title = req.Title
	e.Description = req.Description
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate
	e.Location = req.Location
	if req.Slug != "" {
		e.Slug = req.Slug
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	e.MaxAttendees = req.MaxAttendees
	e.BannerImage = req.BannerImage
	e.RecurrencePattern = req.RecurrencePattern
	e.RecurrenceInterval = req.RecurrenceInterval
	e.RecurrenceEndDate = req.RecurrenceEndDate
	e.RecurrenceOccurrences = req.RecurrenceOccurrences
}

func (s *service) validRecurrence(ctx *ginext.Context, e *model.Event) bool {
	if !e.IsRecurring() {
		return true
	}
	if err := recurrence.RuleFor(e).Validate(); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		return false
	}
	return true
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.EventRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	e := &model.Event{IsActive: true}
	applyEventRequest(e, &req)
	if !s.validRecurrence(ctx, e) {
		return
	}

	if e.Slug == "" {
		generated, err := slug.Unique(ctx, s.repo, e.Title)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to allocate slug")
			dto.InternalServerError(ctx)
			return
		}
		e.Slug = generated
	}

	id, err := s.repo.CreateEvent(ctx, e)
	if err != nil {
		s.respondRepoError(ctx, err, "create event")
		return
	}

	e.ID = id
	if claims, ok := auth.Subject(ctx); ok {
		if err := s.repo.AssignAdministrator(ctx, id, claims.SubID); err != nil {
			s.log.Warn().Err(err).Int64("event_id", id).Msg("failed to assign creator as event administrator")
		}
	}

	s.log.Info().Int64("event_id", id).Str("slug", e.Slug).Msg("event created successfully")
	resp, err := s.eventResponse(ctx, e)
	if err != nil {
		s.respondRepoError(ctx, err, "load created event")
		return
	}
	dto.SuccessCreatedResponse(ctx, resp)
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	e, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get event")
		return
	}
	applyEventRequest(e, &req)
	if !s.validRecurrence(ctx, e) {
		return
	}

	if err := s.repo.UpdateEvent(ctx, e); err != nil {
		s.respondRepoError(ctx, err, "update event")
		return
	}

	s.log.Info().Int64("event_id", id).Msg("event updated")
	resp, err := s.eventResponse(ctx, e)
	if err != nil {
		s.respondRepoError(ctx, err, "load updated event")
		return
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	force := ctx.Query("force") == "true"

	if err := s.repo.DeleteEvent(ctx, id, force); err != nil {
		s.respondRepoError(ctx, err, "delete event")
		return
	}

	s.log.Info().Int64("event_id", id).Bool("force", force).Msg("event deleted")
	dto.SuccessResponse(ctx, map[string]any{"id": id, "deleted": true})
}

func (s *service) GenerateOccurrences(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	parent, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get event")
		return
	}
	if parent.ParentEventID != nil || !parent.IsRecurring() {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Event has no recurrence rule")
		return
	}

	existing, err := s.repo.ListChildEvents(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "list occurrences")
		return
	}
	if len(existing) > 0 {
		dto.ConflictError(ctx, dto.Duplicate, "Occurrences were already generated for this event")
		return
	}

	occurrences, err := recurrence.Expand(recurrence.RuleFor(parent), parent.StartDate, parent.EndDate)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		return
	}
	children := recurrence.Children(parent, occurrences)
	if len(children) > 0 {
		if _, err := s.repo.CreateOccurrences(ctx, children); err != nil {
			if errors.Is(err, repo.ErrDuplicateSlug) {
				dto.ConflictError(ctx, dto.SlugDuplicate, "An occurrence slug is already in use")
				return
			}
			s.respondRepoError(ctx, err, "create occurrences")
			return
		}
	}

	s.log.Info().Int64("event_id", id).Int("created", len(children)).Msg("occurrences generated")
	dto.SuccessCreatedResponse(ctx, dto.OccurrencesResponse{ParentID: id, Created: nonNil(children)})
}

func (s *service) ListEventAttendees(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, err := s.repo.GetEventByID(ctx, id); err != nil {
		s.respondRepoError(ctx, err, "get event")
		return
	}
	attendees, err := s.repo.ListAttendeesByEvent(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "list attendees")
		return
	}
	dto.SuccessResponse(ctx, nonNil(attendees))
}

func (s *service) AssignEventAdministrator(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignAdministratorRequest
	if !s.bindJSON(ctx, &req) {
		return
	}
	if err := s.repo.AssignAdministrator(ctx, id, req.AdministratorID); err != nil {
		s.respondRepoError(ctx, err, "assign administrator")
		return
	}
	dto.SuccessResponse(ctx, map[string]int64{"event_id": id, "administrator_id": req.AdministratorID})
}

func (s *service) ListEventAdministrators(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	admins, err := s.repo.ListEventAdministrators(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "list event administrators")
		return
	}
	dto.SuccessResponse(ctx, nonNil(admins))
}
