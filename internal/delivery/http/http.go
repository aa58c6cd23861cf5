package http

import (
	"context"
	"net/http"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/service"
	"trading-signal-bot/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusHealthy = "healthy"
	statusActive  = "active"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	gatherer  prometheus.Gatherer
}

func NewHttpAPIHandler(
	ctx context.Context,
	cfg *config.Config,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service,
	gatherer prometheus.Gatherer,
) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		echo:      echo,
		validator: validator,
		service:   service,
		gatherer:  gatherer,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.NewRateLimiterMiddleware(20, 40, h.cfg.Telegram.RatelimitExpireDuration))

	h.echo.GET("/", h.Root)
	h.echo.GET("/health", h.Health)
	if h.cfg.Metrics.Enabled && h.gatherer != nil {
		h.echo.GET(h.cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	base := h.echo.Group("/api")
	h.SetupJobs(base)
}

// Health is polled by the hosting platform; it never touches the database.
func (h *HttpAPIHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    statusHealthy,
		Service:   h.cfg.App.ServiceName,
		Timestamp: h.cfg.RenderServiceID,
	})
}

func (h *HttpAPIHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.RootResponse{
		Message: "Telegram Trading Bot is running",
		Status:  statusActive,
	})
}
