package api

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"starkspan-backend/internal/domain/entity"
	"starkspan-backend/internal/usecase"
)

const (
	defaultQuantity     = 1
	defaultMachineHours = 0.5
	maxUploadBytes      = 25 << 20
)

// QuoteHandler is the delivery layer for the quote pipeline.
type QuoteHandler struct {
	orchestrator *usecase.Orchestrator
}

func NewQuoteHandler(orch *usecase.Orchestrator) *QuoteHandler {
	return &QuoteHandler{orchestrator: orch}
}

// HandleQuote accepts a multipart upload (file field "file", or a bare
// "filename" field on the degraded path) plus the optional material,
// quantity and machineTimeH form fields.
func (h *QuoteHandler) HandleQuote(c *fiber.Ctx) error {
	req := entity.QuoteRequest{
		MaterialKey:      c.FormValue("material"),
		Quantity:         parseQuantity(c.FormValue("quantity")),
		MachineTimeHours: parseMachineTime(c.FormValue("machineTimeH")),
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		if fh.Size > maxUploadBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "file_too_large"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable_upload", "detail": err.Error()})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable_upload", "detail": err.Error()})
		}
		req.Filename = fh.Filename
		req.Data = data
		req.ContentType = fh.Header.Get("Content-Type")
	} else {
		req.Filename = strings.TrimSpace(c.FormValue("filename"))
	}

	res, err := h.orchestrator.Execute(c.Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	c.Set("X-Quote-Cache-Hit", strconv.FormatBool(res.Cached))
	return c.Status(fiber.StatusOK).JSON(res)
}

// writeError maps the pipeline error taxonomy onto HTTP statuses.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, entity.ErrUnsupportedInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported_input_format", "detail": err.Error()})
	case errors.Is(err, entity.ErrRasterizationUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "rasterization_unavailable", "detail": err.Error()})
	case errors.Is(err, entity.ErrRasterization):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "rasterization_failure", "detail": err.Error()})
	case errors.Is(err, entity.ErrNormalization):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "normalization_failure", "detail": err.Error()})
	case errors.Is(err, entity.ErrExtraction):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "extraction_failure", "detail": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return defaultQuantity
	}
	return n
}

func parseMachineTime(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return defaultMachineHours
	}
	return v
}
