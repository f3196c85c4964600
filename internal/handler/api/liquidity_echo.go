package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	models "FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/exporter"
	"FinLiquidity/internal/service/metrics"
	"FinLiquidity/internal/service/ratelimit"
	"FinLiquidity/internal/usecase"
	xhttp "FinLiquidity/pkg/http"
	xlogger "FinLiquidity/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// LiquidityEchoHandler exposes the dashboard views over Echo.
type LiquidityEchoHandler struct {
	logger   *xlogger.Logger
	dash     *usecase.Dashboard
	rl       *ratelimit.Limiter
	interval time.Duration
}

// HandlerOption configures LiquidityEchoHandler.
type HandlerOption func(*LiquidityEchoHandler)

// WithRateLimiter throttles requests per client IP.
func WithRateLimiter(rl *ratelimit.Limiter) HandlerOption {
	return func(h *LiquidityEchoHandler) { h.rl = rl }
}

// WithStreamInterval sets how often /api/stream pushes a summary.
func WithStreamInterval(d time.Duration) HandlerOption {
	return func(h *LiquidityEchoHandler) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithAPIMetrics registers endpoint latency and error metrics on reg.
func WithAPIMetrics(reg prometheus.Registerer) HandlerOption {
	return func(*LiquidityEchoHandler) {
		if reg != nil {
			metrics.Register(reg)
		}
	}
}

func NewLiquidityEchoHandler(logger *xlogger.Logger, dash *usecase.Dashboard, opts ...HandlerOption) *LiquidityEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	h := &LiquidityEchoHandler{logger: logger, dash: dash, interval: 30 * time.Second}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *LiquidityEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.throttle)
	g.GET("/liquidity", h.Frame)
	g.GET("/liquidity/summary", h.Summary)
	g.GET("/liquidity/components", h.Component)
	g.GET("/liquidity/export.csv", h.ExportCSV)
	g.GET("/liquidity/export.xlsx", h.ExportXLSX)
	g.GET("/overlay", h.Overlay)
	g.GET("/price", h.Price)
	g.POST("/cache/refresh", h.Refresh)
	g.GET("/stream", h.Stream)
}

func (h *LiquidityEchoHandler) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			h.logger.Warn("api rate_limited", xlogger.String("remote", c.RealIP()), xlogger.String("path", c.Path()))
			return xhttp.TooManyRequestsResponse(c)
		}
		return next(c)
	}
}

// observe records latency for endpoint and returns a func that reports err, if any.
func (h *LiquidityEchoHandler) observe(endpoint string) func(*xhttp.AppError) {
	start := time.Now()
	return func(appErr *xhttp.AppError) {
		metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if appErr != nil {
			metrics.APIErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()
		}
	}
}

func (h *LiquidityEchoHandler) fail(c echo.Context, done func(*xhttp.AppError), endpoint string, err error) error {
	appErr := toAppError(err)
	done(appErr)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *LiquidityEchoHandler) frame(ctx context.Context, start string) (*models.MergedFrame, error) {
	d, err := h.dash.ResolveStart(start)
	if err != nil {
		return nil, err
	}
	return h.dash.Frame(ctx, d)
}

func (h *LiquidityEchoHandler) Frame(c echo.Context) error {
	done := h.observe("liquidity")
	req := &models.FrameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	frame, err := h.frame(c.Request().Context(), req.Start)
	if err != nil {
		return h.fail(c, done, "liquidity", err)
	}
	done(nil)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, frame)
}

func (h *LiquidityEchoHandler) Summary(c echo.Context) error {
	done := h.observe("summary")
	req := &models.FrameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, err := h.dash.ResolveStart(req.Start)
	if err != nil {
		return h.fail(c, done, "summary", err)
	}
	s, err := h.dash.Summary(c.Request().Context(), start)
	if err != nil {
		return h.fail(c, done, "summary", err)
	}
	done(nil)
	return xhttp.SuccessResponse(c, s)
}

func (h *LiquidityEchoHandler) Component(c echo.Context) error {
	done := h.observe("components")
	req := &models.ComponentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, err := h.dash.ResolveStart(req.Start)
	if err != nil {
		return h.fail(c, done, "components", err)
	}
	ts, err := h.dash.Component(c.Request().Context(), start, req.Label)
	if err != nil {
		return h.fail(c, done, "components", err)
	}
	done(nil)
	return xhttp.SuccessResponse(c, ts)
}

func (h *LiquidityEchoHandler) ExportCSV(c echo.Context) error {
	return h.export(c, "export_csv", exporter.CSV, exporter.CSVFileName, exporter.CSVContentType)
}

func (h *LiquidityEchoHandler) ExportXLSX(c echo.Context) error {
	return h.export(c, "export_xlsx", exporter.XLSX, exporter.XLSXFileName, exporter.XLSXContentType)
}

func (h *LiquidityEchoHandler) export(c echo.Context, endpoint string, render func(*models.MergedFrame) ([]byte, error), name, contentType string) error {
	done := h.observe(endpoint)
	req := &models.FrameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	frame, err := h.frame(c.Request().Context(), req.Start)
	if err != nil {
		return h.fail(c, done, endpoint, err)
	}
	body, err := render(frame)
	if err != nil {
		return h.fail(c, done, endpoint, err)
	}
	done(nil)
	return xhttp.AttachmentResponse(c, name, contentType, body)
}

type overlayResponse struct {
	usecase.OverlayResult
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

func (h *LiquidityEchoHandler) Overlay(c echo.Context) error {
	done := h.observe("overlay")
	req := &models.OverlayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	anchor, err := models.ParseAnchor(req.Anchor)
	if err != nil {
		return h.fail(c, done, "overlay", err)
	}
	start, err := h.dash.ResolveStart(req.Start)
	if err != nil {
		return h.fail(c, done, "overlay", err)
	}
	res, err := h.dash.Overlay(c.Request().Context(), start, req.Asset, anchor)
	if err != nil {
		return h.fail(c, done, "overlay", err)
	}
	done(nil)
	out := overlayResponse{OverlayResult: res, Empty: res.Overlay.IsEmpty()}
	if out.Empty {
		out.Message = "no " + res.Asset + " data in selected range"
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *LiquidityEchoHandler) Price(c echo.Context) error {
	done := h.observe("price")
	req := &models.PriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p, err := h.dash.Price(c.Request().Context(), req.Coin)
	if err != nil {
		return h.fail(c, done, "price", err)
	}
	done(nil)
	return xhttp.SuccessResponse(c, p)
}

func (h *LiquidityEchoHandler) Refresh(c echo.Context) error {
	done := h.observe("refresh")
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.dash.Refresh(c.Request().Context(), req.Reason); err != nil {
		return h.fail(c, done, "refresh", err)
	}
	done(nil)
	return xhttp.NoContentResponse(c)
}
