package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

// JobLister reports the registered background jobs. A nil lister means the
// scheduler is disabled in this process.
type JobLister interface {
	Jobs() []cron.JobInfo
}

// ReminderHandler exposes manual pass triggers and the scheduler status to
// operators.
type ReminderHandler interface {
	CheckinPass(w http.ResponseWriter, r *http.Request)
	CheckoutPass(w http.ResponseWriter, r *http.Request)
	OvertimeFinalizer(w http.ResponseWriter, r *http.Request)
	AbsenceFinalizer(w http.ResponseWriter, r *http.Request)
	AbsenceBackfill(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

// RealtimeStats reports the state of the panel's SSE streams.
type RealtimeStats interface {
	Stats() sse.Stats
}

type reminderHandlerImpl struct {
	reminderService reminder.Service
	jobs            JobLister
	realtime        RealtimeStats
	clock           worktime.Clock
}

func NewReminderHandler(reminderService reminder.Service, jobs JobLister, realtime RealtimeStats, clock worktime.Clock) ReminderHandler {
	return &reminderHandlerImpl{
		reminderService: reminderService,
		jobs:            jobs,
		realtime:        realtime,
		clock:           clock,
	}
}

type statusResponse struct {
	reminder.StatusResponse
	SchedulerEnabled bool           `json:"scheduler_enabled"`
	Jobs             []cron.JobInfo `json:"jobs"`
	Realtime         sse.Stats      `json:"realtime"`
}

func (h *reminderHandlerImpl) respond(w http.ResponseWriter, result reminder.PassResult, err error) {
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reminderHandlerImpl) CheckinPass(w http.ResponseWriter, r *http.Request) {
	force := getBoolQueryParam(r, "force", false)
	result, err := h.reminderService.RunCheckinPass(r.Context(), force)
	h.respond(w, result, err)
}

func (h *reminderHandlerImpl) CheckoutPass(w http.ResponseWriter, r *http.Request) {
	result, err := h.reminderService.RunCheckoutPass(r.Context())
	h.respond(w, result, err)
}

func (h *reminderHandlerImpl) OvertimeFinalizer(w http.ResponseWriter, r *http.Request) {
	result, err := h.reminderService.RunOvertimeFinalizer(r.Context())
	h.respond(w, result, err)
}

func (h *reminderHandlerImpl) AbsenceFinalizer(w http.ResponseWriter, r *http.Request) {
	result, err := h.reminderService.RunAbsenceFinalizer(r.Context())
	h.respond(w, result, err)
}

// AbsenceBackfill runs for ?date=YYYY-MM-DD, defaulting to yesterday.
func (h *reminderHandlerImpl) AbsenceBackfill(w http.ResponseWriter, r *http.Request) {
	date := h.clock.Today().AddDate(0, 0, -1)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.clock.Location())
		if err != nil {
			response.HandleError(w, attendance.ErrInvalidDate)
			return
		}
		date = parsed
	}

	result, err := h.reminderService.RunAbsenceBackfill(r.Context(), date)
	h.respond(w, result, err)
}

func (h *reminderHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		StatusResponse: h.reminderService.Status(r.Context()),
		Jobs:           []cron.JobInfo{},
	}
	if h.jobs != nil {
		resp.SchedulerEnabled = true
		resp.Jobs = h.jobs.Jobs()
	}
	if h.realtime != nil {
		resp.Realtime = h.realtime.Stats()
	}
	response.Success(w, resp)
}
