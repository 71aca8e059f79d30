package dto

import (
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
)

type EventRequest struct {
	Title                 string     `json:"title" validate:"required,max=255"`
	Description           string     `json:"description"`
	StartDate             time.Time  `json:"start_date" validate:"required"`
	EndDate               time.Time  `json:"end_date" validate:"required,gtefield=StartDate"`
	Location              string     `json:"location" validate:"max=255"`
	Slug                  string     `json:"slug" validate:"omitempty,max=160,slug"`
	IsActive              *bool      `json:"is_active"`
	MaxAttendees          *int       `json:"max_attendees" validate:"omitempty,gt=0"`
	BannerImage           *string    `json:"banner_image" validate:"omitempty,max=255"`
	RecurrencePattern     *string    `json:"recurrence_pattern" validate:"omitempty,oneof=daily weekly monthly yearly"`
	RecurrenceInterval    *int       `json:"recurrence_interval" validate:"omitempty,gte=1"`
	RecurrenceEndDate     *time.Time `json:"recurrence_end_date"`
	RecurrenceOccurrences *int       `json:"recurrence_occurrences" validate:"omitempty,gte=1"`
}

type RegisterAttendeeRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=255"`
	Email        string  `json:"email" validate:"required,email,max=180"`
	Password     string  `json:"password" validate:"omitempty,min=8,max=72"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
	Organization *string `json:"organization" validate:"omitempty,max=255"`
	JobTitle     *string `json:"job_title" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	Subject     string `json:"subject" validate:"required,max=255"`
	Content     string `json:"content" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	ReplyToID   *int64 `json:"reply_to_id" validate:"omitempty,gt=0"`
}

type PresenterRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Title         *string `json:"title" validate:"omitempty,max=255"`
	Company       *string `json:"company" validate:"omitempty,max=255"`
	Bio           *string `json:"bio"`
	Website       *string `json:"website" validate:"omitempty,url"`
	LinkedIn      *string `json:"linkedin" validate:"omitempty,max=255"`
	Twitter       *string `json:"twitter" validate:"omitempty,max=255"`
	PhotoFilename *string `json:"photo_filename" validate:"omitempty,max=255"`
	IsActive      *bool   `json:"is_active"`
}

type AttachPresenterRequest struct {
	PresenterID             int64      `json:"presenter_id" validate:"required,gt=0"`
	PresentationTitle       *string    `json:"presentation_title" validate:"omitempty,max=255"`
	PresentationDescription *string    `json:"presentation_description"`
	StartTime               *time.Time `json:"start_time"`
	EndTime                 *time.Time `json:"end_time"`
	IsVisible               *bool      `json:"is_visible"`
	SortOrder               int        `json:"sort_order"`
}

type AgendaItemRequest struct {
	PresenterID *int64    `json:"presenter_id" validate:"omitempty,gt=0"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtefield=StartTime"`
	ItemType    string    `json:"item_type" validate:"omitempty,oneof=session keynote workshop break networking other"`
	Speaker     *string   `json:"speaker" validate:"omitempty,max=255"`
	Location    *string   `json:"location" validate:"omitempty,max=255"`
	SortOrder   int       `json:"sort_order"`
	IsVisible   *bool     `json:"is_visible"`
}

type AdministratorRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Email        string  `json:"email" validate:"required,email,max=180"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	Department   *string `json:"department" validate:"omitempty,max=255"`
	IsSuperAdmin bool    `json:"is_super_admin"`
}

type AssignAdministratorRequest struct {
	AdministratorID int64 `json:"administrator_id" validate:"required,gt=0"`
}

// FeaturedEventForm is the urlencoded form behind the featured event editor.
// DisplaySettings is a textarea holding a JSON object.
type FeaturedEventForm struct {
	EventID         *int64         `form:"event_id" validate:"omitempty,gt=0"`
	Title           string         `form:"title" validate:"required,max=255"`
	Description     string         `form:"description"`
	ImageURL        string         `form:"image_url" validate:"omitempty,max=500"`
	LinkURL         string         `form:"link_url" validate:"omitempty,max=500"`
	LinkText        string         `form:"link_text" validate:"omitempty,max=100"`
	Priority        int            `form:"priority"`
	IsActive        bool           `form:"is_active"`
	StartDate       *time.Time     `form:"start_date" time_format:"2006-01-02T15:04" time_utc:"1"`
	EndDate         *time.Time     `form:"end_date" time_format:"2006-01-02T15:04" time_utc:"1"`
	DisplayType     string         `form:"display_type" validate:"omitempty,oneof=banner sidebar popup card"`
	DisplaySettings jsonform.Field `form:"display_settings" validate:"-"`
}
