package dto

import (
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type EventResponse struct {
	model.Event
	DescriptionHTML string `json:"description_html"`
	AttendeeCount   int    `json:"attendee_count"`
	AvailableSeats  *int   `json:"available_seats,omitempty"`
}

type EventDetailResponse struct {
	EventResponse
	Agenda      []model.AgendaItem     `json:"agenda"`
	Presenters  []model.EventPresenter `json:"presenters"`
	Occurrences []model.Event          `json:"occurrences"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegistrationResponse struct {
	Attendee             *model.Attendee `json:"attendee"`
	VerificationRequired bool            `json:"verification_required"`
}

type OccurrencesResponse struct {
	ParentID int64         `json:"parent_id"`
	Created  []model.Event `json:"created"`
}

type ImportResponse struct {
	model.EventImport
	ResultsText      string `json:"results_text"`
	ErrorsText       string `json:"errors_text"`
	ImportedDataText string `json:"imported_data_text"`
}

// FeaturedFormValues are the values a featured event editor is filled with.
type FeaturedFormValues struct {
	ID              int64  `json:"id"`
	EventID         *int64 `json:"event_id,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	LinkURL         string `json:"link_url"`
	LinkText        string `json:"link_text"`
	Priority        int    `json:"priority"`
	IsActive        bool   `json:"is_active"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	DisplayType     string `json:"display_type"`
	DisplaySettings string `json:"display_settings"`
}

type ClickResponse struct {
	ID         int64   `json:"id"`
	LinkURL    *string `json:"link_url,omitempty"`
	ClickCount int     `json:"click_count"`
}
