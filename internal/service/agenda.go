package service

import (
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/wb-go/wbf/ginext"
)

func (s *service) CreateAgendaItem(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AgendaItemRequest
	if !s.bindJSON(ctx, &req) {
		return
	}

	itemType := req.ItemType
	if itemType == "" {
		itemType = model.AgendaSession
	}
	item := &model.AgendaItem{
		EventID:     eventID,
		PresenterID: req.PresenterID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ItemType:    itemType,
		Speaker:     req.Speaker,
		Location:    req.Location,
		SortOrder:   req.SortOrder,
		IsVisible:   req.IsVisible == nil || *req.IsVisible,
	}
	if _, err := s.repo.CreateAgendaItem(ctx, item); err != nil {
		s.respondRepoError(ctx, err, "create agenda item")
		return
	}

	s.log.Info().Int64("event_id", eventID).Int64("agenda_item_id", item.ID).Msg("agenda item created")
	dto.SuccessCreatedResponse(ctx, item)
}

func (s *service) DeleteAgendaItem(ctx *ginext.Context) {
	id, ok := paramID(ctx, "itemID")
	if !ok {
		return
	}
	if err := s.repo.DeleteAgendaItem(ctx, id); err != nil {
		s.respondRepoError(ctx, err, "delete agenda item")
		return
	}
	dto.SuccessResponse(ctx, map[string]any{"id": id, "deleted": true})
}
