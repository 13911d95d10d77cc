package api

import (
	"errors"
	"net/http"
	"time"

	models "RiskPulse/internal/domain/models"
	apimetrics "RiskPulse/internal/service/metrics"
	"RiskPulse/internal/service/ratelimit"
	"RiskPulse/internal/service/risk"
	"RiskPulse/internal/usecase"
	xhttp "RiskPulse/pkg/http"
	xlogger "RiskPulse/pkg/logger"
	"RiskPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// RiskEchoHandler exposes the engine's HTTP API.
type RiskEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	updater  *usecase.DailyUpdater
	history  *usecase.HistoryUseCase
	limiter  *ratelimit.Limiter
	health   func() map[string]string
}

func NewRiskEchoHandler(
	logger *xlogger.Logger,
	analyzer *usecase.Analyzer,
	updater *usecase.DailyUpdater,
	history *usecase.HistoryUseCase,
	health func() map[string]string,
) *RiskEchoHandler {
	apimetrics.Register()
	return &RiskEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		updater:  updater,
		history:  history,
		limiter:  ratelimit.New(),
		health:   health,
	}
}

func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.GET("/phase", h.Phase)
	g.POST("/advance", h.Advance)
	g.GET("/history", h.History)
	g.GET("/health", h.Health)
}

func (h *RiskEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.AnalyzeLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	if !h.limiter.Allow(c.RealIP(), 20, 10) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var price *float64
	if req.Price > 0 {
		price = &req.Price
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), req.Symbol, price)
	if err != nil {
		return h.usecaseError(c, "analyze", req.Symbol, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *RiskEchoHandler) Phase(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.AnalyzeLatency.WithLabelValues("phase").Observe(time.Since(start).Seconds())
	}()

	req := &models.PhaseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var priceBTC *float64
	if req.PriceBTC > 0 {
		priceBTC = &req.PriceBTC
	}

	res, err := h.analyzer.Phase(c.Request().Context(), req.Symbol, priceBTC)
	if err != nil {
		return h.usecaseError(c, "phase", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *RiskEchoHandler) Advance(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.AnalyzeLatency.WithLabelValues("advance").Observe(time.Since(start).Seconds())
	}()

	req := &models.AdvanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()

	if req.Symbol == "" {
		if err := h.updater.AdvanceAll(ctx, now); err != nil {
			h.logger.Error("advance all error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
		}
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"advanced": h.updater.Symbols(),
			"date":     util.DayKey(now),
		})
	}

	rec, err := h.updater.AdvanceOneDay(ctx, req.Symbol, now)
	if err != nil {
		return h.usecaseError(c, "advance", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *RiskEchoHandler) History(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.AnalyzeLatency.WithLabelValues("history").Observe(time.Since(start).Seconds())
	}()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from := util.ParseTimeDefault(req.From, now.AddDate(0, -3, 0))
	if t, ok := util.ParseDay(req.From); ok {
		from = t
	}
	to := util.ParseTimeDefault(req.To, now)
	if t, ok := util.ParseDay(req.To); ok {
		to = t
	}

	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		Symbol: req.Symbol,
		From:   from,
		To:     to,
		Limit:  req.Limit,
	})
	if err != nil {
		return h.usecaseError(c, "history", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *RiskEchoHandler) Health(c echo.Context) error {
	components := map[string]string{}
	if h.health != nil {
		components = h.health()
	}

	status := http.StatusOK
	for _, s := range components {
		if s != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{
		"status":     http.StatusText(status),
		"components": components,
	})
}

func (h *RiskEchoHandler) usecaseError(c echo.Context, endpoint, symbol string, err error) error {
	apimetrics.AnalyzeErrors.WithLabelValues(endpoint).Inc()

	if errors.Is(err, risk.ErrNoData) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", symbol).WithError(err))
	}
	if errors.Is(err, risk.ErrBaseSymbol) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("%s is the base symbol and has no pair phase", symbol).WithError(err))
	}
	if risk.IsInvariant(err) {
		h.logger.Error("invariant violation",
			xlogger.String("endpoint", endpoint),
			xlogger.String("symbol", symbol),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INVARIANT", "", err.Error(), http.StatusInternalServerError).WithError(err))
	}

	h.logger.Error("usecase error",
		xlogger.String("endpoint", endpoint),
		xlogger.String("symbol", symbol),
		xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
