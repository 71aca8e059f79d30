// Package importer runs uploaded CSV files into events or attendee registrations.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/bayworx/event-management-system-sub001/internal/slug"
	"github.com/bayworx/event-management-system-sub001/pkg/validator"
	"github.com/rs/zerolog"
)

var (
	ErrNotPending    = errors.New("import is not pending")
	ErrUnknownType   = errors.New("unknown import type")
	ErrMissingColumn = errors.New("missing required column")
)

var columns = map[string]struct{ required, optional []string }{
	model.ImportTypeEvents: {
		required: []string{"title", "description", "start_time", "end_time", "location", "capacity"},
		optional: []string{"slug"},
	},
	model.ImportTypeAttendees: {
		required: []string{"event_slug", "name", "email"},
		optional: []string{"phone", "organization", "job_title", "notes"},
	},
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Importer struct {
	repo repo.Repository
	dir  string
	log  *zerolog.Logger
}

func New(r repo.Repository, storageDir string, log *zerolog.Logger) *Importer {
	return &Importer{repo: r, dir: storageDir, log: log}
}

// Path is where an upload stored under filename is read from.
func (im *Importer) Path(filename string) string {
	return filepath.Join(im.dir, filepath.Base(filename))
}

// Run processes a pending import and stores its outcome. Row failures do not fail the
// import; only a file that cannot be read at all does.
func (im *Importer) Run(ctx context.Context, importID int64) (*model.EventImport, error) {
	ok, err := im.repo.MarkImportProcessing(ctx, importID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}

	imp, err := im.repo.GetImportByID(ctx, importID)
	if err != nil {
		// Nothing has been written yet, so a redelivery may run it from scratch.
		if relErr := im.repo.ReleaseImport(context.WithoutCancel(ctx), importID); relErr != nil {
			im.log.Error().Err(relErr).Int64("import_id", importID).Msg("failed to release import")
		}
		return nil, err
	}

	out, runErr := im.process(ctx, imp)
	if runErr != nil {
		im.log.Warn().Err(runErr).Int64("import_id", importID).Msg("import failed")
		imp.Status = model.ImportFailed
		imp.Errors = jsonform.NewValue([]RowError{{Row: 0, Message: runErr.Error()}})
	} else {
		imp.Status = model.ImportCompleted
		imp.TotalRows = out.total
		imp.SuccessfulRows = len(out.createdIDs)
		imp.FailedRows = len(out.errors)
		imp.Errors = jsonform.NewValue(out.errors)
		imp.ImportedData = jsonform.NewValue(out.imported)
		imp.Results = jsonform.NewValue(map[string]any{
			"created_ids": out.createdIDs,
			"total":       out.total,
			"import_type": imp.ImportType,
		})
	}

	if err := im.repo.CompleteImport(ctx, imp); err != nil {
		err = fmt.Errorf("store import outcome: %w", err)
		im.markFailed(ctx, imp, err)
		return nil, err
	}

	im.log.Info().
		Int64("import_id", imp.ID).
		Str("status", imp.Status).
		Int("successful_rows", imp.SuccessfulRows).
		Int("failed_rows", imp.FailedRows).
		Msg("import processed")
	return imp, nil
}

// markFailed stores a bare failed outcome when the full one could not be written.
// Rows were already created, so the import must not go back to pending.
func (im *Importer) markFailed(ctx context.Context, imp *model.EventImport, cause error) {
	failed := *imp
	failed.Status = model.ImportFailed
	failed.Results = jsonform.Value{}
	failed.ImportedData = jsonform.Value{}
	failed.Errors = jsonform.NewValue([]RowError{{Row: 0, Message: cause.Error()}})
	if err := im.repo.CompleteImport(context.WithoutCancel(ctx), &failed); err != nil {
		im.log.Error().Err(err).Int64("import_id", imp.ID).Msg("failed to mark import failed")
	}
}

type outcome struct {
	total      int
	createdIDs []int64
	errors     []RowError
	imported   []map[string]string
}

func (im *Importer) process(ctx context.Context, imp *model.EventImport) (*outcome, error) {
	layout, ok := columns[imp.ImportType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, imp.ImportType)
	}

	f, err := os.Open(im.Path(imp.Filename))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", imp.OriginalName, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := headerIndex(header)
	for _, col := range layout.required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	known := append(append([]string{}, layout.required...), layout.optional...)
	out := &outcome{createdIDs: []int64{}, errors: []RowError{}, imported: []map[string]string{}}
	events := map[string]*model.Event{}

	// the header is row 1
	for rowNum := 2; ; rowNum++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("read %s: %w", imp.OriginalName, err)
		}
		out.total++
		if err != nil {
			out.errors = append(out.errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		row := make(map[string]string, len(known))
		for _, col := range known {
			if i, ok := index[col]; ok && i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}

		var id int64
		switch imp.ImportType {
		case model.ImportTypeEvents:
			id, err = im.importEvent(ctx, row)
		case model.ImportTypeAttendees:
			id, err = im.importAttendee(ctx, row, events)
		}
		if err != nil {
			out.errors = append(out.errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		out.createdIDs = append(out.createdIDs, id)
		out.imported = append(out.imported, row)
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}

func (im *Importer) importEvent(ctx context.Context, row map[string]string) (int64, error) {
	if row["title"] == "" {
		return 0, errors.New("title is required")
	}
	start, err := time.Parse(time.RFC3339, row["start_time"])
	if err != nil {
		return 0, fmt.Errorf("start_time must be RFC 3339: %q", row["start_time"])
	}
	end, err := time.Parse(time.RFC3339, row["end_time"])
	if err != nil {
		return 0, fmt.Errorf("end_time must be RFC 3339: %q", row["end_time"])
	}
	if end.Before(start) {
		return 0, errors.New("end_time is before start_time")
	}

	e := &model.Event{
		Title:       row["title"],
		Description: row["description"],
		StartDate:   start,
		EndDate:     end,
		Location:    row["location"],
		IsActive:    true,
	}

	if c := row["capacity"]; c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("capacity must be a positive integer: %q", c)
		}
		e.MaxAttendees = &n
	}

	if s := row["slug"]; s != "" {
		if !slug.Valid(s) {
			return 0, fmt.Errorf("slug %q has bad format", s)
		}
		e.Slug = s
	} else {
		e.Slug, err = slug.Unique(ctx, im.repo, e.Title)
		if err != nil {
			return 0, err
		}
	}

	return im.repo.CreateEvent(ctx, e)
}

func (im *Importer) importAttendee(ctx context.Context, row map[string]string, events map[string]*model.Event) (int64, error) {
	if row["name"] == "" {
		return 0, errors.New("name is required")
	}
	if err := validator.Validator().Var(row["email"], "required,email"); err != nil {
		return 0, fmt.Errorf("email %q is invalid", row["email"])
	}

	ev, ok := events[row["event_slug"]]
	if !ok {
		var err error
		ev, err = im.repo.GetEventBySlug(ctx, row["event_slug"])
		if err != nil {
			if errors.Is(err, repo.ErrEventNotFound) {
				return 0, fmt.Errorf("event %q not found", row["event_slug"])
			}
			return 0, err
		}
		events[row["event_slug"]] = ev
	}

	a := &model.Attendee{
		EventID:      ev.ID,
		Name:         row["name"],
		Email:        row["email"],
		Phone:        optional(row["phone"]),
		Organization: optional(row["organization"]),
		JobTitle:     optional(row["job_title"]),
		Notes:        optional(row["notes"]),
		Roles:        model.Roles{model.RoleAttendee},
	}
	return im.repo.RegisterAttendee(ctx, a, nil)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
