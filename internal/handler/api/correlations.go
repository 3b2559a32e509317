package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"CorrScope/internal/domain/models"
	"CorrScope/internal/usecase"
	xhttp "CorrScope/pkg/http"
	xlogger "CorrScope/pkg/logger"
)

// CorrelationsHandler serves the dashboard API.
type CorrelationsHandler struct {
	logger *xlogger.Logger
	uc     *usecase.CorrelationsUseCase
	health []HealthCheck
	start  time.Time
}

// HealthCheck is one named dependency probe reported by the health endpoint.
type HealthCheck struct {
	Name  string
	Check func() error
}

func NewCorrelationsHandler(logger *xlogger.Logger, uc *usecase.CorrelationsUseCase, health ...HealthCheck) *CorrelationsHandler {
	return &CorrelationsHandler{logger: logger, uc: uc, health: health, start: time.Now()}
}

func (h *CorrelationsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/correlations", h.Correlations)
	g.GET("/symbols", h.Symbols)
	g.GET("/series/:symbol", h.Series)
	g.GET("/health", h.Health)
}

func (h *CorrelationsHandler) Correlations(c echo.Context) error {
	req := &models.CorrelationsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trigger := usecase.TriggerRequest
	if req.Reload {
		trigger = usecase.TriggerReload
	}
	res, err := h.uc.GetCorrelations(c.Request().Context(), normalizeSymbol(req.Symbol), req.Params(), req.Reload, trigger)
	if err != nil {
		if errors.Is(err, models.ErrSeriesNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol).WithError(err))
		}
		h.logger.Error("correlations usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, correlationsPayload{
		CorrelationResult: res,
		TopPositive:       res.TopPositive(topHighlights),
		TopNegative:       res.TopNegative(topHighlights),
	})
}

// topHighlights bounds the positive/negative highlight lists in the payload.
const topHighlights = 5

type correlationsPayload struct {
	*models.CorrelationResult
	TopPositive []models.CorrelationEntry `json:"top_positive"`
	TopNegative []models.CorrelationEntry `json:"top_negative"`
}

func (h *CorrelationsHandler) Symbols(c echo.Context) error {
	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.uc.ListSymbols(c.Request().Context(), req.Type, req.Prefix, req.Limit)
	if err != nil {
		h.logger.Error("symbols usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *CorrelationsHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := normalizeSymbol(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	params := models.FilterParams{
		StartYear:       req.StartYear,
		MonthlyResample: req.Monthly,
		Source:          req.Source,
	}
	s, err := h.uc.GetSeries(c.Request().Context(), symbol, params, req.Raw)
	if err != nil {
		if errors.Is(err, models.ErrSeriesNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", symbol).WithError(err))
		}
		h.logger.Error("series usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *CorrelationsHandler) Health(c echo.Context) error {
	type dependency struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}
	deps := make([]dependency, 0, len(h.health))
	healthy := true
	for _, hc := range h.health {
		d := dependency{Name: hc.Name, Status: "up"}
		if err := hc.Check(); err != nil {
			d.Status = "down"
			d.Error = err.Error()
			healthy = false
		}
		deps = append(deps, d)
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, code, map[string]interface{}{
		"status":       status,
		"uptime":       time.Since(h.start).Round(time.Second).String(),
		"dependencies": deps,
	})
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
