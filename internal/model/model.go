package model

import (
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
)

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

type Event struct {
	ID                    int64      `db:"id" json:"id"`
	Title                 string     `db:"title" json:"title"`
	Description           string     `db:"description" json:"description,omitempty"`
	StartDate             time.Time  `db:"start_date" json:"start_date"`
	EndDate               time.Time  `db:"end_date" json:"end_date"`
	Location              string     `db:"location" json:"location,omitempty"`
	Slug                  string     `db:"slug" json:"slug"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	MaxAttendees          *int       `db:"max_attendees" json:"max_attendees,omitempty"`
	BannerImage           *string    `db:"banner_image" json:"banner_image,omitempty"`
	ParentEventID         *int64     `db:"parent_event_id" json:"parent_event_id,omitempty"`
	RecurrencePattern     *string    `db:"recurrence_pattern" json:"recurrence_pattern,omitempty"`
	RecurrenceInterval    *int       `db:"recurrence_interval" json:"recurrence_interval,omitempty"`
	RecurrenceEndDate     *time.Time `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	RecurrenceOccurrences *int       `db:"recurrence_occurrences" json:"recurrence_occurrences,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

func (e *Event) IsRecurring() bool {
	return e.RecurrencePattern != nil && *e.RecurrencePattern != ""
}

type Administrator struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Roles        Roles      `db:"roles" json:"roles"`
	PasswordHash string     `db:"password" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsSuperAdmin bool       `db:"is_super_admin" json:"is_super_admin"`
	Department   *string    `db:"department" json:"department,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Attendee struct {
	ID                     int64      `db:"id" json:"id"`
	EventID                int64      `db:"event_id" json:"event_id"`
	Name                   string     `db:"name" json:"name"`
	Email                  string     `db:"email" json:"email"`
	Phone                  *string    `db:"phone" json:"phone,omitempty"`
	Organization           *string    `db:"organization" json:"organization,omitempty"`
	JobTitle               *string    `db:"job_title" json:"job_title,omitempty"`
	Roles                  Roles      `db:"roles" json:"roles"`
	PasswordHash           *string    `db:"password" json:"-"`
	EmailVerificationToken *string    `db:"email_verification_token" json:"-"`
	EmailVerifiedAt        *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	IsCheckedIn            bool       `db:"is_checked_in" json:"is_checked_in"`
	CheckedInAt            *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	RegisteredAt           time.Time  `db:"registered_at" json:"registered_at"`
	Notes                  *string    `db:"notes" json:"notes,omitempty"`
	Badge                  *string    `db:"badge" json:"badge,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

func (a *Attendee) IsVerified() bool {
	return a.EmailVerifiedAt != nil
}

type Presenter struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         *string   `db:"email" json:"email,omitempty"`
	Title         *string   `db:"title" json:"title,omitempty"`
	Company       *string   `db:"company" json:"company,omitempty"`
	Bio           *string   `db:"bio" json:"bio,omitempty"`
	Website       *string   `db:"website" json:"website,omitempty"`
	LinkedIn      *string   `db:"linkedin" json:"linkedin,omitempty"`
	Twitter       *string   `db:"twitter" json:"twitter,omitempty"`
	PhotoFilename *string   `db:"photo_filename" json:"photo_filename,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type EventPresenter struct {
	ID                      int64      `db:"id" json:"id"`
	EventID                 int64      `db:"event_id" json:"event_id"`
	PresenterID             int64      `db:"presenter_id" json:"presenter_id"`
	PresentationTitle       *string    `db:"presentation_title" json:"presentation_title,omitempty"`
	PresentationDescription *string    `db:"presentation_description" json:"presentation_description,omitempty"`
	StartTime               *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime                 *time.Time `db:"end_time" json:"end_time,omitempty"`
	IsVisible               bool       `db:"is_visible" json:"is_visible"`
	SortOrder               int        `db:"sort_order" json:"sort_order"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`

	Presenter *Presenter `db:"-" json:"presenter,omitempty"`
}

const (
	AgendaSession    = "session"
	AgendaKeynote    = "keynote"
	AgendaWorkshop   = "workshop"
	AgendaBreak      = "break"
	AgendaNetworking = "networking"
	AgendaOther      = "other"
)

type AgendaItem struct {
	ID          int64     `db:"id" json:"id"`
	EventID     int64     `db:"event_id" json:"event_id"`
	PresenterID *int64    `db:"presenter_id" json:"presenter_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	ItemType    string    `db:"item_type" json:"item_type"`
	Speaker     *string   `db:"speaker" json:"speaker,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	IsVisible   bool      `db:"is_visible" json:"is_visible"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	MessageSent     = "sent"
	MessageRead     = "read"
	MessageArchived = "archived"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Message struct {
	ID          int64      `db:"id" json:"id"`
	SenderID    int64      `db:"sender_id" json:"sender_id"`
	RecipientID int64      `db:"recipient_id" json:"recipient_id"`
	EventID     int64      `db:"event_id" json:"event_id"`
	ReplyToID   *int64     `db:"reply_to_id" json:"reply_to_id,omitempty"`
	Subject     string     `db:"subject" json:"subject"`
	Content     string     `db:"content" json:"content"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type EventFile struct {
	ID            int64     `db:"id" json:"id"`
	EventID       int64     `db:"event_id" json:"event_id"`
	Filename      string    `db:"filename" json:"-"`
	OriginalName  string    `db:"original_name" json:"original_name"`
	MimeType      string    `db:"mime_type" json:"mime_type"`
	FileSize      int64     `db:"file_size" json:"file_size"`
	Description   *string   `db:"description" json:"description,omitempty"`
	DownloadCount int       `db:"download_count" json:"download_count"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ImportPending    = "pending"
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"

	ImportTypeEvents    = "events"
	ImportTypeAttendees = "attendees"
)

type EventImport struct {
	ID             int64          `db:"id" json:"id"`
	CreatedByID    int64          `db:"created_by_id" json:"created_by_id"`
	Filename       string         `db:"filename" json:"filename"`
	OriginalName   string         `db:"original_name" json:"original_name"`
	Status         string         `db:"status" json:"status"`
	ImportType     string         `db:"import_type" json:"import_type"`
	TotalRows      int            `db:"total_rows" json:"total_rows"`
	SuccessfulRows int            `db:"successful_rows" json:"successful_rows"`
	FailedRows     int            `db:"failed_rows" json:"failed_rows"`
	Results        jsonform.Value `db:"results" json:"results"`
	Errors         jsonform.Value `db:"errors" json:"errors"`
	ImportedData   jsonform.Value `db:"imported_data" json:"imported_data"`
	ProcessedAt    *time.Time     `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	DisplayBanner  = "banner"
	DisplaySidebar = "sidebar"
	DisplayPopup   = "popup"
	DisplayCard    = "card"
)

type FeaturedEvent struct {
	ID              int64             `db:"id" json:"id"`
	EventID         *int64            `db:"event_id" json:"event_id,omitempty"`
	CreatedByID     int64             `db:"created_by_id" json:"created_by_id"`
	Title           string            `db:"title" json:"title"`
	Description     *string           `db:"description" json:"description,omitempty"`
	ImageURL        *string           `db:"image_url" json:"image_url,omitempty"`
	LinkURL         *string           `db:"link_url" json:"link_url,omitempty"`
	LinkText        *string           `db:"link_text" json:"link_text,omitempty"`
	Priority        int               `db:"priority" json:"priority"`
	IsActive        bool              `db:"is_active" json:"is_active"`
	StartDate       *time.Time        `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time        `db:"end_date" json:"end_date,omitempty"`
	DisplayType     string            `db:"display_type" json:"display_type"`
	DisplaySettings jsonform.Document `db:"display_settings" json:"display_settings,omitempty"`
	ViewCount       int               `db:"view_count" json:"view_count"`
	ClickCount      int               `db:"click_count" json:"click_count"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// InWindow reports whether the banner may be shown at t.
func (f *FeaturedEvent) InWindow(t time.Time) bool {
	if !f.IsActive {
		return false
	}
	if f.StartDate != nil && t.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.After(*f.EndDate) {
		return false
	}
	return true
}

type AsyncMessage struct {
	ID          int64          `db:"id" json:"id"`
	Body        string         `db:"body" json:"body"`
	Headers     jsonform.Value `db:"headers" json:"headers"`
	QueueName   string         `db:"queue_name" json:"queue_name"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	AvailableAt time.Time      `db:"available_at" json:"available_at"`
	DeliveredAt *time.Time     `db:"delivered_at" json:"delivered_at,omitempty"`
}
