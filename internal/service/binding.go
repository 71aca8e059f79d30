package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
	"github.com/bayworx/event-management-system-sub001/pkg/validator"
	"github.com/gin-gonic/gin/binding"
	"github.com/wb-go/wbf/ginext"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts an event description to HTML. Raw HTML in the source is dropped.
func renderMarkdown(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *service) bindJSON(ctx *ginext.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		s.log.Warn().Err(err).Msg("failed to parse request body")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return false
	}
	return s.validate(ctx, req)
}

// bindForm binds an urlencoded or multipart form. A textarea holding malformed JSON is
// reported against its own field with the codec message.
func (s *service) bindForm(ctx *ginext.Context, req any, jsonField string) bool {
	if err := ctx.ShouldBindWith(req, binding.Form); err != nil {
		var tfe *jsonform.TransformationFailedError
		if errors.As(err, &tfe) {
			dto.FieldInvalidJSONError(ctx, jsonField, tfe.Message)
			return false
		}
		s.log.Warn().Err(err).Msg("failed to parse form")
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid form data")
		return false
	}
	return s.validate(ctx, req)
}

func (s *service) validate(ctx *ginext.Context, req any) bool {
	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Debug().Msgf("validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return false
	}
	return true
}
