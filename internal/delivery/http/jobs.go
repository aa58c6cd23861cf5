package http

import (
	"net/http"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/strategy"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs")
	{
		v1.POST("/:type/run", h.RunJob)
	}
}

// RunJob triggers one iteration of a background loop outside its schedule.
func (h *HttpAPIHandler) RunJob(c echo.Context) error {
	var req dto.RunJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBaseResponse(http.StatusBadRequest, err.Error(), nil))
	}

	response := dto.NewBaseResponse(http.StatusOK, "Job finished", req)
	if err := h.service.SchedulerService.RunJobTask(c.Request().Context(), strategy.JobType(req.JobType)); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}
