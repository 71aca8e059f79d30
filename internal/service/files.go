package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
)

var errUploadTooLarge = errors.New("upload too large")

// storedPath resolves a stored file name inside the storage directory.
func (s *service) storedPath(filename string) string {
	return filepath.Join(s.cfg.StorageDir, filepath.Base(filename))
}

// saveUpload writes the multipart file under a random name, keeping the original extension.
func (s *service) saveUpload(ctx *ginext.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.cfg.MaxUploadBytes {
		return "", errUploadTooLarge
	}
	if err := os.MkdirAll(s.cfg.StorageDir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := ctx.SaveUploadedFile(fh, s.storedPath(name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return name, nil
}

// formFile reads a required multipart file field, writing the error response itself.
func (s *service) formFile(ctx *ginext.Context, field string) (string, *multipart.FileHeader, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		dto.FieldBadFormatError(ctx, field)
		return "", nil, false
	}
	name, err := s.saveUpload(ctx, fh)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			dto.ErrorResponse(ctx, http.StatusRequestEntityTooLarge, dto.FieldIncorrect,
				fmt.Sprintf("File exceeds %d bytes", s.cfg.MaxUploadBytes))
			return "", nil, false
		}
		s.log.Error().Err(err).Msg("failed to store upload")
		dto.InternalServerError(ctx)
		return "", nil, false
	}
	return name, fh, true
}

func (s *service) ListEventFiles(ctx *ginext.Context) {
	e, ok := s.activeEventBySlug(ctx)
	if !ok {
		return
	}
	files, err := s.repo.ListEventFiles(ctx, e.ID, true)
	if err != nil {
		s.respondRepoError(ctx, err, "list event files")
		return
	}
	dto.SuccessResponse(ctx, nonNil(files))
}

func (s *service) DownloadFile(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	f, err := s.repo.GetEventFileByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get event file")
		return
	}
	if !f.IsActive {
		dto.NotFoundError(ctx, dto.FileNotFound, "File not found")
		return
	}

	path := s.storedPath(f.Filename)
	if _, err := os.Stat(path); err != nil {
		s.log.Error().Err(err).Int64("file_id", id).Msg("stored file is missing")
		dto.NotFoundError(ctx, dto.FileNotFound, "File not found")
		return
	}
	if err := s.repo.IncrementDownloadCount(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("file_id", id).Msg("failed to count download")
	}

	ctx.FileAttachment(path, f.OriginalName)
}

func (s *service) UploadFile(ctx *ginext.Context) {
	eventID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		s.respondRepoError(ctx, err, "get event")
		return
	}

	name, fh, ok := s.formFile(ctx, "file")
	if !ok {
		return
	}

	sortOrder, _ := strconv.Atoi(ctx.PostForm("sort_order"))
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	f := &model.EventFile{
		EventID:      eventID,
		Filename:     name,
		OriginalName: filepath.Base(fh.Filename),
		MimeType:     mimeType,
		FileSize:     fh.Size,
		Description:  optional(ctx.PostForm("description")),
		IsActive:     true,
		SortOrder:    sortOrder,
	}
	if _, err := s.repo.CreateEventFile(ctx, f); err != nil {
		_ = os.Remove(s.storedPath(name))
		s.respondRepoError(ctx, err, "create event file")
		return
	}

	s.log.Info().Int64("event_id", eventID).Int64("file_id", f.ID).Int64("size", f.FileSize).Msg("file uploaded")
	dto.SuccessCreatedResponse(ctx, f)
}

func (s *service) DeactivateFile(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := s.repo.DeactivateEventFile(ctx, id); err != nil {
		s.respondRepoError(ctx, err, "deactivate event file")
		return
	}
	dto.SuccessResponse(ctx, map[string]any{"id": id, "is_active": false})
}
