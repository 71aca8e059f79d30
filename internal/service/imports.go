package service

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/wb-go/wbf/ginext"
)

const (
	defaultImportLimit = 50
	maxImportLimit     = 200
)

func importResponse(imp *model.EventImport) dto.ImportResponse {
	return dto.ImportResponse{
		EventImport:      *imp,
		ResultsText:      imp.Results.Text(),
		ErrorsText:       imp.Errors.Text(),
		ImportedDataText: imp.ImportedData.Text(),
	}
}

func (s *service) CreateImport(ctx *ginext.Context) {
	claims, ok := subject(ctx)
	if !ok {
		return
	}

	importType := ctx.PostForm("import_type")
	if importType != model.ImportTypeEvents && importType != model.ImportTypeAttendees {
		dto.FieldIncorrectError(ctx, "import_type")
		return
	}
	if fh, err := ctx.FormFile("file"); err == nil && !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		dto.FieldIncorrectError(ctx, "file")
		return
	}

	name, fh, ok := s.formFile(ctx, "file")
	if !ok {
		return
	}

	imp := &model.EventImport{
		CreatedByID:  claims.SubID,
		Filename:     name,
		OriginalName: filepath.Base(fh.Filename),
		Status:       model.ImportPending,
		ImportType:   importType,
	}
	notify := outbox.Notify(s.cfg.OutboxQueue, outbox.TypeImportRequested, func(id int64) any {
		return outbox.ImportRequestedPayload{ImportID: id}
	})
	if _, err := s.repo.CreateImport(ctx, imp, notify); err != nil {
		_ = os.Remove(s.storedPath(name))
		s.respondRepoError(ctx, err, "create import")
		return
	}

	s.log.Info().Int64("import_id", imp.ID).Str("import_type", importType).Msg("import queued")
	dto.SuccessCreatedResponse(ctx, importResponse(imp))
}

func (s *service) ListImports(ctx *ginext.Context) {
	limit := defaultImportLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			dto.FieldIncorrectError(ctx, "limit")
			return
		}
		limit = min(n, maxImportLimit)
	}

	imports, err := s.repo.ListImports(ctx, limit)
	if err != nil {
		s.respondRepoError(ctx, err, "list imports")
		return
	}
	resp := make([]dto.ImportResponse, 0, len(imports))
	for i := range imports {
		resp = append(resp, importResponse(&imports[i]))
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) GetImport(ctx *ginext.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	imp, err := s.repo.GetImportByID(ctx, id)
	if err != nil {
		s.respondRepoError(ctx, err, "get import")
		return
	}
	dto.SuccessResponse(ctx, importResponse(imp))
}
