package service

import (
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/wb-go/wbf/ginext"
)

// formTime is the layout of a datetime-local input.
const formTime = "2006-01-02T15:04"

func (s *service) ListFeatured(ctx *ginext.Context) {
	displayType := ctx.Query("display_type")
	items, err := s.repo.ListActiveFeatured(ctx, s.now(), displayType)
	if err != nil {
		s.respondRepoError(ctx, err, "list featured events")
		return
	}

	ids := make([]int64, 0, len(items))
	for _, f := range items {
		ids = append(ids, f.ID)
	}
	if err := s.repo.RecordFeaturedViews(ctx, ids); err != nil {
		s.log.Warn().Err(err).Int("count", len(ids)).Msg("failed to record featured views")
	}

	dto.SuccessResponse(ctx, nonNil(items))
}

func (s *service) ClickFeatured(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	f, err := s.repo.GetFeaturedByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get featured event")
		return
	}
	if !f.InWindow(s.now()) {
		dto.NotFoundError(ctx, dto.FeaturedNotFound, "Featured event not found")
		return
	}

	f, err = s.repo.RecordFeaturedClick(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "record featured click")
		return
	}
	dto.SuccessResponse(ctx, dto.ClickResponse{ID: f.ID, LinkURL: f.LinkURL, ClickCount: f.ClickCount})
}

func (s *service) AdminListFeatured(ctx *ginext.Context) {
	items, err := s.repo.ListFeatured(ctx)
	if err != nil {
		s.respondRepoError(ctx, err, "list featured events")
		return
	}
	dto.SuccessResponse(ctx, nonNil(items))
}

// bindFeatured binds the editor form and copies it onto f. A display_settings field that
// was not submitted keeps the stored settings.
func (s *service) bindFeatured(ctx *ginext.Context, f *model.FeaturedEvent) bool {
	var form dto.FeaturedEventForm
	if !s.bindForm(ctx, &form, "display_settings") {
		return false
	}

	start, end := formDate(form.StartDate), formDate(form.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		dto.FieldIncorrectError(ctx, "end_date")
		return false
	}

	if form.DisplaySettings.Set {
		if form.DisplaySettings.Value == nil {
			f.DisplaySettings = nil
		} else {
			doc, ok := form.DisplaySettings.Document()
			if !ok {
				dto.FieldInvalidJSONError(ctx, "display_settings", "Value must be a JSON object")
				return false
			}
			f.DisplaySettings = doc
		}
	}

	displayType := form.DisplayType
	if displayType == "" {
		displayType = model.DisplayBanner
	}
	f.EventID = form.EventID
	f.Title = form.Title
	f.Description = optional(form.Description)
	f.ImageURL = optional(form.ImageURL)
	f.LinkURL = optional(form.LinkURL)
	f.LinkText = optional(form.LinkText)
	f.Priority = form.Priority
	f.IsActive = form.IsActive
	f.StartDate = start
	f.EndDate = end
	f.DisplayType = displayType
	return true
}

// formDate treats an empty datetime input, which gin binds as the zero time, as unset.
func formDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}

func (s *service) CreateFeatured(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}
	f := &model.FeaturedEvent{CreatedByID: claims.SubID}
	if !s.bindFeatured(ctx, f) {
		return
	}

	if _, err := s.repo.CreateFeatured(ctx, f); err != nil {
		s.respondRepoError(ctx, err, "create featured event")
		return
	}

	s.log.Info().Int64("featured_id", f.ID).Str("display_type", f.DisplayType).Msg("featured event created")
	dto.SuccessCreatedResponse(ctx, f)
}

func (s *service) UpdateFeatured(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	f, err := s.repo.GetFeaturedByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get featured event")
		return
	}
	if !s.bindFeatured(ctx, f) {
		return
	}

	if err := s.repo.UpdateFeatured(ctx, f); err != nil {
		s.respondRepoError(ctx, err, "update featured event")
		return
	}
	dto.SuccessResponse(ctx, f)
}

func formatFormDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(formTime)
}

// FeaturedForm returns the values the featured event editor is filled with.
func (s *service) FeaturedForm(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	f, err := s.repo.GetFeaturedByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get featured event")
		return
	}

	dto.SuccessResponse(ctx, dto.FeaturedFormValues{
		ID:              f.ID,
		EventID:         f.EventID,
		Title:           f.Title,
		Description:     deref(f.Description),
		ImageURL:        deref(f.ImageURL),
		LinkURL:         deref(f.LinkURL),
		LinkText:        deref(f.LinkText),
		Priority:        f.Priority,
		IsActive:        f.IsActive,
		StartDate:       formatFormDate(f.StartDate),
		EndDate:         formatFormDate(f.EndDate),
		DisplayType:     f.DisplayType,
		DisplaySettings: jsonform.Encode(f.DisplaySettings),
	})
}
