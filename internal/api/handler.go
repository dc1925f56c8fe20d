// Package api exposes trace analysis over HTTP.
package api

import (
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mrzor/sched-analyzer/internal/analyzer"
	"github.com/mrzor/sched-analyzer/internal/metrics"
	"github.com/mrzor/sched-analyzer/internal/producer"
)

// DefaultScheduler labels traces posted without a scheduler query parameter.
const DefaultScheduler = "adhoc"

// AnalyzeResponse is the body returned for a trace with records.
type AnalyzeResponse struct {
	RunID     string                  `json:"run_id"`
	Scheduler string                  `json:"scheduler"`
	Metrics   metrics.Aggregate       `json:"metrics"`
	Processes []metrics.ProcessReport `json:"processes"`
	Derived   map[string]float64      `json:"derived,omitempty"`
}

// Handler serves the analysis endpoints.
type Handler struct {
	analyzer *analyzer.Analyzer
}

// NewHandler creates a Handler backed by an analyzer.
func NewHandler(a *analyzer.Analyzer) *Handler {
	return &Handler{analyzer: a}
}

// NewApp builds the fiber application with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             64 * 1024 * 1024,
	})

	v1 := app.Group("/api").Group("/v1")
	v1.Get("/health", h.Health)
	v1.Post("/analyze", h.Analyze)

	return app
}

// Health reports liveness.
func (h *Handler) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

// Analyze computes metrics for the posted trace. The trace is either the raw
// request body or a multipart file in the "trace" field.
func (h *Handler) Analyze(ctx *fiber.Ctx) error {
	text, err := traceText(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	scheduler := ctx.Query("scheduler", DefaultScheduler)
	job := analyzer.Job{
		Scheduler: scheduler,
		Input:     "request",
		Producer:  &producer.StaticProducer{Label: scheduler, Text: text},
	}

	results, err := h.analyzer.Run(ctx.UserContext(), []analyzer.Job{job})
	if err != nil {
		log.Printf("api: result handlers failed: %v", err)
	}
	result := results[0]

	switch result.Status {
	case analyzer.StatusOK:
		return ctx.JSON(AnalyzeResponse{
			RunID:     result.RunID,
			Scheduler: result.Scheduler,
			Metrics:   result.Report.Aggregate,
			Processes: result.Report.Processes,
			Derived:   result.Derived,
		})
	case analyzer.StatusNoResult:
		return ctx.JSON(fiber.Map{"status": "empty", "run_id": result.RunID})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  result.Error,
			"run_id": result.RunID,
		})
	}
}

func traceText(ctx *fiber.Ctx) (string, error) {
	if !isMultipart(ctx) {
		return string(ctx.Body()), nil
	}

	header, err := ctx.FormFile("trace")
	if err != nil {
		return "", err
	}
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Printf("api: closing upload: %v", closeErr)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isMultipart(ctx *fiber.Ctx) bool {
	return strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
