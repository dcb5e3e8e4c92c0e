package api

import (
	"errors"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/service/metrics"
	"TelescopeStatus/internal/service/ratelimit"
	"TelescopeStatus/internal/usecase"
	xhttp "TelescopeStatus/pkg/http"
	xlogger "TelescopeStatus/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RateLimit is a per-client token bucket for endpoints that may hit the archive.
type RateLimit struct {
	Capacity     float64
	RefillPerSec float64
}

// TelescopesEchoHandler serves telescope datasets and their figures.
type TelescopesEchoHandler struct {
	logger  *xlogger.Logger
	reg     *usecase.Registry
	rl      *ratelimit.Limiter
	limit   RateLimit
	metrics *metrics.FigureMetrics
}

func NewTelescopesEchoHandler(logger *xlogger.Logger, reg *usecase.Registry, rl *ratelimit.Limiter, limit RateLimit, m *metrics.FigureMetrics) *TelescopesEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if rl == nil {
		rl = ratelimit.New()
	}
	return &TelescopesEchoHandler{logger: logger, reg: reg, rl: rl, limit: limit, metrics: m}
}

func (h *TelescopesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/telescopes")
	g.GET("", h.List)
	g.GET("/:telescope", h.Describe)
	g.PUT("/:telescope", h.Reconfigure)
	g.POST("/:telescope/export", h.Export)

	f := g.Group("/:telescope/figures")
	f.GET("/instruments", h.Instruments)
	f.GET("/datatypes", h.DataTypes)
	f.GET("/exposure", h.Exposure)
	f.GET("/scatter", h.Scatter)
}

func (h *TelescopesEchoHandler) List(c echo.Context) error {
	missions, err := h.reg.Missions(c.Request().Context())
	if err != nil {
		h.logger.Error("list missions failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, missions, int64(len(missions)))
}

func (h *TelescopesEchoHandler) Describe(c echo.Context) error {
	req := &models.TelescopeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "describe") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	s, err := h.reg.Describe(c.Request().Context(), req.Telescope)
	if err != nil {
		return h.fail(c, "describe", err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *TelescopesEchoHandler) Reconfigure(c echo.Context) error {
	start := time.Now()
	req := &models.ReconfigureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "reconfigure") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	s, err := h.reg.Reconfigure(c.Request().Context(), req.Telescope, req.StartTime, req.EndTime, req.MaxResults)
	h.metrics.Observe("reconfigure", time.Since(start).Seconds(), err != nil)
	if err != nil {
		return h.fail(c, "reconfigure", err)
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *TelescopesEchoHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "export") {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	path, err := h.reg.Export(c.Request().Context(), req.Telescope, req.Format)
	if err != nil {
		return h.fail(c, "export", err)
	}
	return xhttp.CreatedResponse(c, map[string]string{"path": path, "format": req.Format})
}

func (h *TelescopesEchoHandler) Instruments(c echo.Context) error {
	req := &models.TelescopeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.figure(c, req.Telescope, usecase.FigureInstruments, usecase.FigureOptions{})
}

func (h *TelescopesEchoHandler) DataTypes(c echo.Context) error {
	req := &models.TelescopeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.figure(c, req.Telescope, usecase.FigureDataTypes, usecase.FigureOptions{})
}

func (h *TelescopesEchoHandler) Exposure(c echo.Context) error {
	req := &models.ExposureRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.figure(c, req.Telescope, usecase.FigureExposure, usecase.FigureOptions{Log: req.Log})
}

func (h *TelescopesEchoHandler) Scatter(c echo.Context) error {
	req := &models.ScatterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return h.figure(c, req.Telescope, usecase.FigureScatter, usecase.FigureOptions{X: req.X, Y: req.Y})
}

func (h *TelescopesEchoHandler) figure(c echo.Context, telescope, kind string, opts usecase.FigureOptions) error {
	start := time.Now()
	endpoint := "figure_" + kind
	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	fig, err := h.reg.Figure(c.Request().Context(), telescope, kind, opts)
	h.metrics.Observe(endpoint, time.Since(start).Seconds(), err != nil)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, fig)
}

func (h *TelescopesEchoHandler) allow(c echo.Context, endpoint string) bool {
	if h.limit.Capacity <= 0 {
		return true
	}
	if h.rl.Allow(c.RealIP()+":"+endpoint, h.limit.Capacity, h.limit.RefillPerSec) {
		return true
	}
	h.metrics.RateLimited(endpoint)
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return false
}

func (h *TelescopesEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var ute *models.UnknownTelescopeError
	var ce *models.ColumnError
	switch {
	case errors.As(err, &ute):
		return xhttp.NotFoundError(ute.Error()).WithParam("valid", ute.Valid).WithError(err)
	case errors.As(err, &ce):
		e := xhttp.UnprocessableError(ce.Error()).WithError(err)
		e.Field = ce.Column
		return e
	case errors.Is(err, models.ErrInvalidTimeFormat),
		errors.Is(err, models.ErrInvalidRange),
		errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrMissingCacheFormat),
		errors.Is(err, usecase.ErrUnknownFigure):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrAuthentication):
		return xhttp.UnauthorizedError(err.Error()).WithError(err)
	}
	return xhttp.InternalError("Something went wrong").WithError(err)
}
