package http

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/in"
)

type ScheduleController struct {
	useCase in.ScheduleUseCase
	cfg     *config.Config
}

func NewScheduleController(useCase in.ScheduleUseCase, cfg *config.Config) *ScheduleController {
	return &ScheduleController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *ScheduleController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/schedule/:date", c.getSchedule)
		api.GET("/schedule/:date/available", c.getAvailableSlots)
		api.POST("/schedules/batch", c.getBatchSchedules)
		api.GET("/history", c.getHistory)
		api.GET("/schedule/:date/reminders", c.getDueReminders)

		api.POST("/schedule/:date/slots/:time/assign", c.assign)
		api.POST("/schedule/:date/slots/:time/block", c.block)
		api.DELETE("/schedule/:date/slots/:time/block", c.unblock)
		api.PATCH("/appointments/:id", c.modify)
		api.POST("/appointments/:id/cancel", c.cancel)
		api.POST("/appointments/:id/cancel-from-reminder", c.cancelFromReminder)

		api.POST("/cache/invalidate", c.invalidateCache)
	}
}

type AssignRequest struct {
	Patient         domain.PatientRef `json:"patient" binding:"required"`
	DurationMinutes int               `json:"durationMinutes"`
	Notes           string            `json:"notes"`
}

// ModifyRequest меняет только переданные поля
type ModifyRequest struct {
	Date            *string            `json:"date"`
	Time            *string            `json:"time"`
	Patient         *domain.PatientRef `json:"patient"`
	DurationMinutes *int               `json:"durationMinutes"`
	Notes           *string            `json:"notes"`
}

type BatchSchedulesRequest struct {
	Dates []string `json:"dates" binding:"required,min=1"`
}

type InvalidateCacheRequest struct {
	Date string `json:"date"`
}

// SlotView is a slot as shown to clients, with the derived display state.
type SlotView struct {
	domain.Slot
	DisplayState domain.SlotState `json:"displayState"`
}

type PeriodScheduleView struct {
	Morning   []SlotView `json:"morning"`
	Afternoon []SlotView `json:"afternoon"`
	Night     []SlotView `json:"night"`
}

func (c *ScheduleController) getSchedule(ctx *gin.Context) {
	date, ok := parseDateParam(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.GetSchedule(ctx.Request.Context(), date)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if ctx.Query("group") == "period" {
		periods := domain.GroupByPeriod(slots)
		ctx.JSON(http.StatusOK, gin.H{
			"date": date,
			"periods": PeriodScheduleView{
				Morning:   c.views(periods.Morning),
				Afternoon: c.views(periods.Afternoon),
				Night:     c.views(periods.Night),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slots": c.views(slots),
	})
}

func (c *ScheduleController) getAvailableSlots(ctx *gin.Context) {
	date, ok := parseDateParam(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.AvailableSlots(ctx.Request.Context(), date)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slots": c.views(slots),
	})
}

func (c *ScheduleController) getBatchSchedules(ctx *gin.Context) {
	var req BatchSchedulesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dates := make([]json_types.Date, 0, len(req.Dates))
	for _, str := range req.Dates {
		date, err := json_types.ParseDate(str)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		dates = append(dates, date)
	}

	schedules, err := c.useCase.GetSchedules(ctx.Request.Context(), dates)
	if err != nil {
		respondError(ctx, err)
		return
	}

	results := make(map[string][]SlotView, len(schedules))
	for date, slots := range schedules {
		results[date.String()] = c.views(slots)
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

func (c *ScheduleController) getHistory(ctx *gin.Context) {
	from, err := json_types.ParseDate(ctx.Query("from"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date format"})
		return
	}
	to, err := json_types.ParseDate(ctx.Query("to"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date format"})
		return
	}

	entries, err := c.useCase.History(ctx.Request.Context(), from, to)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"from":    from,
		"to":      to,
		"entries": entries,
	})
}

func (c *ScheduleController) assign(ctx *gin.Context) {
	date, t, ok := parseSlotParams(ctx)
	if !ok {
		return
	}

	var req AssignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := c.useCase.Assign(ctx.Request.Context(), in.AssignCommand{
		Date:            date,
		Time:            t,
		Patient:         req.Patient,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	c.respondSchedule(ctx, http.StatusCreated, date, slots, err)
}

func (c *ScheduleController) modify(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req ModifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := in.ModifyCommand{
		BackendID:       id,
		Patient:         req.Patient,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	if req.Date != nil {
		date, err := json_types.ParseDate(*req.Date)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		cmd.Date = &date
	}
	if req.Time != nil {
		t, err := json_types.ParseTimeOfDay(*req.Time)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time format"})
			return
		}
		cmd.Time = &t
	}

	slots, err := c.useCase.Modify(ctx.Request.Context(), cmd)
	c.respondSchedule(ctx, http.StatusOK, scheduleDate(slots), slots, err)
}

func (c *ScheduleController) cancel(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.Cancel(ctx.Request.Context(), id)
	c.respondSchedule(ctx, http.StatusOK, scheduleDate(slots), slots, err)
}

func (c *ScheduleController) cancelFromReminder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.CancelFromReminder(ctx.Request.Context(), id)
	c.respondSchedule(ctx, http.StatusOK, scheduleDate(slots), slots, err)
}

func (c *ScheduleController) getDueReminders(ctx *gin.Context) {
	date, ok := parseDateParam(ctx)
	if !ok {
		return
	}

	reminders, err := c.useCase.DueReminders(ctx.Request.Context(), date)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"date":      date,
		"reminders": reminders,
	})
}

func (c *ScheduleController) block(ctx *gin.Context) {
	date, t, ok := parseSlotParams(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.Block(ctx.Request.Context(), date, t)
	c.respondSchedule(ctx, http.StatusOK, date, slots, err)
}

func (c *ScheduleController) unblock(ctx *gin.Context) {
	date, t, ok := parseSlotParams(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.Unblock(ctx.Request.Context(), date, t)
	c.respondSchedule(ctx, http.StatusOK, date, slots, err)
}

func (c *ScheduleController) invalidateCache(ctx *gin.Context) {
	var req InvalidateCacheRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date == "" {
		if err := c.useCase.InvalidateAll(ctx.Request.Context()); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
		return
	}

	date, err := json_types.ParseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}
	if err := c.useCase.InvalidateDate(ctx.Request.Context(), date); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *ScheduleController) respondSchedule(ctx *gin.Context, status int, date json_types.Date, slots []domain.Slot, err error) {
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(status, gin.H{
		"date":  date,
		"slots": c.views(slots),
	})
}

func (c *ScheduleController) views(slots []domain.Slot) []SlotView {
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, SlotView{
			Slot:         slot,
			DisplayState: c.useCase.DisplayState(slot),
		})
	}
	return views
}

func (c *ScheduleController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
