package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moonlitpsych/moonlit-scheduler-sub007/internal/platform/auth"
)

const defaultSlotDurationMinutes = 60

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "scheduler", "front_desk", "case_manager"))
	readGroup.GET("/providers/:id/schedule", h.GetWeeklyTemplate)
	readGroup.GET("/providers/:id/exceptions", h.ListExceptions)
	readGroup.GET("/providers/:id/booking-policy", h.GetBookingPolicy)
	readGroup.GET("/providers/:id/available-slots", h.GetAvailableSlots)
	readGroup.GET("/available-providers", h.GetAvailableProviders)

	writeGroup := api.Group("", auth.RequireRole("admin", "scheduler"))
	writeGroup.PUT("/providers/:id/schedule", h.SaveWeeklyTemplate)
	writeGroup.POST("/providers/:id/exceptions", h.CreateException)
	writeGroup.DELETE("/exceptions/:id", h.DeleteException)
	writeGroup.PUT("/providers/:id/booking-policy", h.SaveBookingPolicy)
}

func (h *Handler) GetWeeklyTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	tmpl := h.svc.GetWeeklyTemplate(c.Request().Context(), id)
	return c.JSON(http.StatusOK, tmpl)
}

func (h *Handler) SaveWeeklyTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var blocks []TimeBlock
	if err := c.Bind(&blocks); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SaveWeeklyTemplate(c.Request().Context(), id, blocks); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":      "validation failed",
				"violations": verr.Violations,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListExceptions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, to, err := parseDateRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	excs, err := h.svc.GetExceptions(c.Request().Context(), id, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, excs)
}

func (h *Handler) CreateException(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in ExceptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.ProviderID = id
	ids, err := h.svc.CreateException(c.Request().Context(), in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":      "validation failed",
				"violations": verr.Violations,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"ids": ids})
}

func (h *Handler) DeleteException(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteException(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetBookingPolicy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	policy := h.svc.GetBookingPolicy(c.Request().Context(), id)
	return c.JSON(http.StatusOK, policy)
}

func (h *Handler) SaveBookingPolicy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var policy BookingPolicy
	if err := c.Bind(&policy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	policy.ProviderID = id
	if err := h.svc.SaveBookingPolicy(c.Request().Context(), &policy); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":      "validation failed",
				"violations": verr.Violations,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, policy)
}

func (h *Handler) GetAvailableSlots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, to, err := parseDateRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	duration := durationParam(c)
	slots, err := h.svc.GetAvailableSlots(c.Request().Context(), id, from, to, duration)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots, "total": len(slots)})
}

func (h *Handler) GetAvailableProviders(c echo.Context) error {
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	duration := durationParam(c)
	results, err := h.svc.GetAvailableProviders(c.Request().Context(), date, duration)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"providers": results, "total": len(results)})
}

func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.New("from and to are required")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must be on or after from")
	}
	return from, to, nil
}

func durationParam(c echo.Context) int {
	if d, err := strconv.Atoi(c.QueryParam("duration")); err == nil && d > 0 {
		return d
	}
	return defaultSlotDurationMinutes
}
