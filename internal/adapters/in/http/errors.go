package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

// respondError maps domain errors onto status codes. The body always carries
// the reason so clients can tell "already booked" from "blocked".
func respondError(ctx *gin.Context, err error) {
	var (
		conflict     *domain.ConflictError
		invalidState *domain.InvalidStateError
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
	)

	switch {
	case errors.As(err, &conflict):
		ctx.JSON(http.StatusConflict, gin.H{
			"error":  err.Error(),
			"reason": conflict.Reason,
			"state":  conflict.State,
		})
	case errors.As(err, &invalidState):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"reason": invalidState.Reason,
			"state":  invalidState.State,
		})
	case errors.As(err, &notFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":  err.Error(),
			"reason": "not found",
		})
	case errors.As(err, &validation):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":  err.Error(),
			"reason": validation.Reason,
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  err.Error(),
			"reason": "store unavailable",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseDateParam(ctx *gin.Context) (json_types.Date, bool) {
	date, err := json_types.ParseDate(ctx.Param("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return json_types.Date{}, false
	}
	return date, true
}

func parseSlotParams(ctx *gin.Context) (json_types.Date, json_types.TimeOfDay, bool) {
	date, ok := parseDateParam(ctx)
	if !ok {
		return json_types.Date{}, json_types.TimeOfDay{}, false
	}

	t, err := json_types.ParseTimeOfDay(ctx.Param("time"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time format"})
		return json_types.Date{}, json_types.TimeOfDay{}, false
	}
	return date, t, true
}

func parseIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func scheduleDate(slots []domain.Slot) json_types.Date {
	if len(slots) == 0 {
		return json_types.Date{}
	}
	return slots[0].Date
}
