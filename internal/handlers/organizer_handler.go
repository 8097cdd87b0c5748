package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"organizer-api/internal/logging"
	"organizer-api/internal/middleware"
	"organizer-api/internal/models"
	"organizer-api/internal/services"
	"organizer-api/internal/utils"
	"organizer-api/internal/validation"
)

const (
	progressInterval    = 500 * time.Millisecond
	progressTTL         = 5 * time.Minute
	defaultHistoryLimit = models.MaxHistoryRecords
)

// OrganizerHandler serves scan, analyze and execute plus the plan editor
// helpers and usage endpoints.
type OrganizerHandler struct {
	svc           *services.OrganizerService
	settings      SettingsStore
	progressStore *models.ProgressStore
}

// NewOrganizerHandler creates a new organizer handler
func NewOrganizerHandler(svc *services.OrganizerService, settings SettingsStore, progressStore *models.ProgressStore) *OrganizerHandler {
	return &OrganizerHandler{svc: svc, settings: settings, progressStore: progressStore}
}

// getFileSystem returns the filesystem for the current request (local or
// remote). The caller closes it.
func (h *OrganizerHandler) getFileSystem(c *fiber.Ctx) (services.FileSystem, error) {
	userCtx := middleware.GetUserContext(c)
	if userCtx != nil && userCtx.IsRemote && userCtx.SSHConfig != nil {
		return services.NewSFTPFS(userCtx.SSHConfig)
	}
	return services.NewLocalFS(), nil
}

// debugMode reports whether raw model output may be echoed to the client
func (h *OrganizerHandler) debugMode(ctx context.Context) bool {
	s, err := h.settings.LoadSettings(ctx)
	return err == nil && s.DebugMode
}

// handleServiceError maps service errors to the response envelope
func (h *OrganizerHandler) handleServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSSHConnection):
		return c.Status(fiber.StatusBadGateway).JSON(
			models.NewErrorResponse("SSH Connection Failed", models.CodeSSHError, err.Error()),
		)
	case errors.Is(err, services.ErrScan):
		return c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Failed to scan folder", models.CodeScanError, err.Error()),
		)
	case errors.Is(err, utils.ErrInvalidPath):
		return c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", models.CodeInvalidRequest, err.Error()),
		)
	case errors.Is(err, services.ErrConfig):
		return c.Status(fiber.StatusPreconditionFailed).JSON(
			models.NewErrorResponse("Categorization is not configured", models.CodeConfigError, err.Error()),
		)
	case errors.Is(err, services.ErrParse):
		details := services.ErrParse.Error()
		var perr *services.ParseError
		if errors.As(err, &perr) && h.debugMode(c.UserContext()) {
			details = perr.Raw
		}
		return c.Status(fiber.StatusBadGateway).JSON(
			models.NewErrorResponse("Failed to parse categorization", models.CodeParseError, details),
		)
	case errors.Is(err, services.ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(
			models.NewErrorResponse("Categorization service failed", models.CodeUpstreamError, err.Error()),
		)
	case errors.Is(err, models.ErrCategoryNotFound), errors.Is(err, models.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(
			models.NewErrorResponse("Not Found", models.CodeNotFound, err.Error()),
		)
	}

	logging.Logger().Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(
		models.NewErrorResponse("Internal Server Error", models.CodeInternalError, err.Error()),
	)
}

// parseBody decodes and validates the request body into req. When it
// returns false the error response has already been written.
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", "INVALID_BODY", err.Error()),
		)
	}
	if err := validation.ValidateStruct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", models.CodeInvalidRequest, err.Error()),
		)
	}
	return true, nil
}

// Scan handles POST /api/v1/folders/scan
func (h *OrganizerHandler) Scan(c *fiber.Ctx) error {
	var req models.ScanRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	fs, err := h.getFileSystem(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	defer fs.Close()

	items, err := h.svc.ScanFolder(c.UserContext(), fs, req.Path)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(models.NewSuccessResponse("Folder scanned", fiber.Map{
		"path":  req.Path,
		"items": items,
		"total": len(items),
	}))
}

// Analyze handles POST /api/v1/folders/analyze
func (h *OrganizerHandler) Analyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	res, err := h.svc.AnalyzeFolder(c.UserContext(), req.Path, req.Items)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	resp := models.AnalyzeResponse{Plan: res.Plan}
	if res.Debug != nil {
		resp.Debug = res.Debug
	}
	return c.JSON(models.NewSuccessResponse("Plan generated", resp))
}

// Execute handles POST /api/v1/folders/execute. With ?async=true the plan
// is applied in the background and progress is read from the progress
// endpoints.
func (h *OrganizerHandler) Execute(c *fiber.Ctx) error {
	var req models.ExecuteRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	fs, err := h.getFileSystem(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if c.QueryBool("async") {
		opID := req.OperationID
		if opID == "" {
			opID = uuid.New().String()
		}
		// visible to progress readers before the goroutine starts
		h.progressStore.Set(opID, &models.Progress{ID: opID, Path: req.Path, Status: models.StatusPending})

		go func() {
			defer fs.Close()
			defer h.expireProgress(opID)
			if _, err := h.svc.ExecuteOrganization(context.Background(), fs, req.Path, req.Plan, opID); err != nil {
				logging.Logger().Error().Err(err).Str("operation_id", opID).Msg("background execution failed")
				h.progressStore.Finish(opID, err.Error())
			}
		}()
		return c.Status(fiber.StatusAccepted).JSON(models.NewSuccessResponse("Execution started", fiber.Map{
			"operation_id": opID,
		}))
	}
	defer fs.Close()

	report, err := h.svc.ExecuteOrganization(c.UserContext(), fs, req.Path, req.Plan, req.OperationID)
	if report != nil {
		defer h.expireProgress(report.OperationID)
	}
	if err != nil && report == nil {
		return h.handleServiceError(c, err)
	}
	if err != nil {
		// files were moved but bookkeeping failed; report both
		logging.Logger().Error().Err(err).Str("operation_id", report.OperationID).Msg("execution not recorded")
		return c.Status(fiber.StatusInternalServerError).JSON(models.StandardResponse{
			Success:   false,
			Message:   "Plan applied but history was not recorded",
			Data:      report,
			Error:     &models.ErrorInfo{Code: models.CodeInternalError, Details: err.Error()},
			Timestamp: time.Now(),
		})
	}

	return c.JSON(models.NewSuccessResponse("Plan applied", report))
}

// expireProgress drops a finished operation from the progress store once
// late readers have had a chance to see its final state.
func (h *OrganizerHandler) expireProgress(opID string) {
	time.AfterFunc(progressTTL, func() { h.progressStore.Delete(opID) })
}

// Progress handles GET /api/v1/folders/execute/progress/:id (SSE)
func (h *OrganizerHandler) Progress(c *fiber.Ctx) error {
	opID := c.Params("id")
	if opID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", "INVALID_ID", "Operation ID is required"),
		)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for range ticker.C {
			progress, ok := h.progressStore.Get(opID)
			if !ok {
				fmt.Fprintf(w, "data: {\"error\": \"operation not found\"}\n\n")
				w.Flush()
				return
			}

			data, _ := sonic.Marshal(progress)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if err := w.Flush(); err != nil {
				// client went away
				return
			}

			if progress.Status == models.StatusCompleted || progress.Status == models.StatusFailed {
				return
			}
		}
	})

	return nil
}

// WebSocketProgress handles WS /api/v1/folders/execute/ws/:id
func (h *OrganizerHandler) WebSocketProgress(c *websocket.Conn) {
	opID := c.Params("id")
	if opID == "" {
		c.WriteJSON(fiber.Map{"error": "Operation ID is required"})
		c.Close()
		return
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for range ticker.C {
		progress, ok := h.progressStore.Get(opID)
		if !ok {
			c.WriteJSON(fiber.Map{"error": "operation not found"})
			c.Close()
			return
		}

		if err := c.WriteJSON(progress); err != nil {
			return
		}

		if progress.Status == models.StatusCompleted || progress.Status == models.StatusFailed {
			c.Close()
			return
		}
	}
}

// MoveItem handles POST /api/v1/plans/move-item
func (h *OrganizerHandler) MoveItem(c *fiber.Ctx) error {
	var req models.MoveItemRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	if err := req.Plan.MoveItem(req.Item, req.From, req.To); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(models.NewSuccessResponse("Item moved", fiber.Map{"plan": req.Plan}))
}

// Summary handles POST /api/v1/plans/summary
func (h *OrganizerHandler) Summary(c *fiber.Ctx) error {
	var req models.PlanSummaryRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	return c.JSON(models.NewSuccessResponse("Plan summary", req.Plan.Summary()))
}

// Metrics handles GET /api/v1/usage/metrics
func (h *OrganizerHandler) Metrics(c *fiber.Ctx) error {
	snap, err := h.svc.GetMetrics(c.UserContext())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(models.NewSuccessResponse("Usage metrics", fiber.Map{
		"metrics":              snap,
		"total_size_formatted": utils.FormatFileSize(snap.TotalBytes),
	}))
}

// History handles GET /api/v1/usage/history?limit=N
func (h *OrganizerHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > models.MaxHistoryRecords {
		limit = defaultHistoryLimit
	}

	records, err := h.svc.GetHistory(c.UserContext(), limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(models.NewSuccessResponse("Move history", models.HistoryPage{
		Items: records,
		Total: len(records),
		Limit: limit,
	}))
}
