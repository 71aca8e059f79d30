package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
)

type Service interface {
	// public
	ListEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	VerifyEmail(ctx *ginext.Context)
	AttendeeLogin(ctx *ginext.Context)
	AdminLogin(ctx *ginext.Context)
	ListFeatured(ctx *ginext.Context)
	ClickFeatured(ctx *ginext.Context)
	ListEventFiles(ctx *ginext.Context)
	DownloadFile(ctx *ginext.Context)

	// attendee
	SendMessage(ctx *ginext.Context)
	ListSentMessages(ctx *ginext.Context)

	// administrator
	AdminListEvents(ctx *ginext.Context)
	AdminGetEvent(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	GenerateOccurrences(ctx *ginext.Context)
	ListEventAttendees(ctx *ginext.Context)
	AssignEventAdministrator(ctx *ginext.Context)
	ListEventAdministrators(ctx *ginext.Context)
	CheckIn(ctx *ginext.Context)
	CreatePresenter(ctx *ginext.Context)
	ListPresenters(ctx *ginext.Context)
	AttachPresenter(ctx *ginext.Context)
	CreateAgendaItem(ctx *ginext.Context)
	DeleteAgendaItem(ctx *ginext.Context)
	Inbox(ctx *ginext.Context)
	MarkMessageRead(ctx *ginext.Context)
	UploadFile(ctx *ginext.Context)
	DeactivateFile(ctx *ginext.Context)
	CreateImport(ctx *ginext.Context)
	ListImports(ctx *ginext.Context)
	GetImport(ctx *ginext.Context)
	AdminListFeatured(ctx *ginext.Context)
	CreateFeatured(ctx *ginext.Context)
	UpdateFeatured(ctx *ginext.Context)
	FeaturedForm(ctx *ginext.Context)
	CreateAdministrator(ctx *ginext.Context)
	ListAdministrators(ctx *ginext.Context)
}

type Config struct {
	// OutboxQueue is the async_messages queue name the relay drains.
	OutboxQueue string
	StorageDir  string
	// MaxUploadBytes bounds file and CSV uploads.
	MaxUploadBytes int64
}

type service struct {
	repo   repo.Repository
	log    *zerolog.Logger
	tokens *auth.TokenManager
	cfg    Config
	now    func() time.Time
}

func NewService(repo repo.Repository, logger *zerolog.Logger, tokens *auth.TokenManager, cfg Config) Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &service{
		repo:   repo,
		log:    logger,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
	}
}

func paramID(ctx *ginext.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		dto.FieldIncorrectError(ctx, name)
		return 0, false
	}
	return id, true
}

func subject(ctx *ginext.Context) (*auth.Claims, bool) {
	claims, ok := auth.Subject(ctx)
	if !ok {
		dto.UnauthorizedError(ctx, "Authentication required")
		return nil, false
	}
	return claims, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// respondRepoError writes the response for an error returned by the repository.
// Unknown errors are logged and reported as a 500.
func (s *service) respondRepoError(ctx *ginext.Context, err error, op string) {
	switch {
	case errors.Is(err, repo.ErrEventNotFound):
		dto.EventNotFoundError(ctx)
	case errors.Is(err, repo.ErrEventFull):
		dto.BadResponseError(ctx, dto.EventFull, "Event is full")
	case errors.Is(err, repo.ErrEventHasDependents):
		dto.ConflictError(ctx, dto.EventHasDependents, "Event has attendees, agenda items, messages or files; retry with force=true")
	case errors.Is(err, repo.ErrDuplicateSlug):
		dto.ConflictError(ctx, dto.SlugDuplicate, "Slug is already in use")
	case errors.Is(err, repo.ErrDuplicateEmail):
		dto.ConflictError(ctx, dto.EmailDuplicate, "Email is already registered")
	case errors.Is(err, repo.ErrDuplicate):
		dto.ConflictError(ctx, dto.Duplicate, "Record already exists")
	case errors.Is(err, repo.ErrAttendeeNotFound):
		dto.NotFoundError(ctx, dto.AttendeeNotFound, "Attendee not found")
	case errors.Is(err, repo.ErrAlreadyCheckedIn):
		dto.ConflictError(ctx, dto.AlreadyCheckedIn, "Attendee already checked in")
	case errors.Is(err, repo.ErrAdministratorNotFound):
		dto.NotFoundError(ctx, dto.AdministratorNotFound, "Administrator not found")
	case errors.Is(err, repo.ErrPresenterNotFound):
		dto.NotFoundError(ctx, dto.PresenterNotFound, "Presenter not found")
	case errors.Is(err, repo.ErrAgendaItemNotFound):
		dto.NotFoundError(ctx, dto.AgendaItemNotFound, "Agenda item not found")
	case errors.Is(err, repo.ErrMessageNotFound):
		dto.NotFoundError(ctx, dto.MessageNotFound, "Message not found")
	case errors.Is(err, repo.ErrFileNotFound):
		dto.NotFoundError(ctx, dto.FileNotFound, "File not found")
	case errors.Is(err, repo.ErrImportNotFound):
		dto.NotFoundError(ctx, dto.ImportNotFound, "Import not found")
	case errors.Is(err, repo.ErrFeaturedNotFound):
		dto.NotFoundError(ctx, dto.FeaturedNotFound, "Featured event not found")
	case errors.Is(err, repo.ErrReferenceNotFound):
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Referenced record does not exist")
	default:
		s.log.Error().Err(err).Msgf("failed to %s", op)
		dto.InternalServerError(ctx)
	}
}
