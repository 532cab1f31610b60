package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceService struct {
	clockIn  attendance.ClockInRequest
	clockOut attendance.ClockOutRequest
	err      error
}

func (f *fakeAttendanceService) ClockIn(_ context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	f.clockIn = req
	return attendance.AttendanceResponse{ID: "att-1", EmployeeID: req.EmployeeID, Status: "present"}, f.err
}

func (f *fakeAttendanceService) ClockOut(_ context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	f.clockOut = req
	return attendance.AttendanceResponse{ID: "att-1", EmployeeID: req.EmployeeID, Status: "present"}, f.err
}

func (f *fakeAttendanceService) Today(_ context.Context, employeeID string) (attendance.TodayResponse, error) {
	return attendance.TodayResponse{Date: "2025-03-04", Events: []attendance.EventResponse{}}, f.err
}

type fakeReminderService struct {
	force        bool
	backfillDate time.Time
	err          error
}

func (f *fakeReminderService) result(pass string) (reminder.PassResult, error) {
	return reminder.PassResult{Pass: pass, Date: "2025-03-04"}, f.err
}

func (f *fakeReminderService) RunCheckinPass(_ context.Context, force bool) (reminder.PassResult, error) {
	f.force = force
	return f.result(reminder.PassCheckin)
}

func (f *fakeReminderService) RunCheckoutPass(context.Context) (reminder.PassResult, error) {
	return f.result(reminder.PassCheckout)
}

func (f *fakeReminderService) RunOvertimeFinalizer(context.Context) (reminder.PassResult, error) {
	return f.result(reminder.PassOvertimeFinalizer)
}

func (f *fakeReminderService) RunAbsenceFinalizer(context.Context) (reminder.PassResult, error) {
	return f.result(reminder.PassAbsenceFinalizer)
}

func (f *fakeReminderService) RunAbsenceBackfill(_ context.Context, date time.Time) (reminder.PassResult, error) {
	f.backfillDate = date
	return f.result(reminder.PassAbsenceBackfill)
}

func (f *fakeReminderService) Status(context.Context) reminder.StatusResponse {
	return reminder.StatusResponse{ReminderTime: "08:55", WorkingHours: "09:00"}
}

type fakeSettingsService struct {
	settings.SettingsService
	updated *settings.UpdateSettingsRequest
}

func (f *fakeSettingsService) Get(context.Context) (settings.SettingsResponse, error) {
	return settings.SettingsResponse{ReminderTime: "08:55", WorkingHours: "09:00", IsDefault: true}, nil
}

func (f *fakeSettingsService) Update(_ context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}
	f.updated = &req
	return settings.SettingsResponse{ReminderTime: req.ReminderTime, WorkingHours: req.WorkingHours}, nil
}

type fakeNotificationService struct {
	notification.Service
	allReadFor string
	listed     notification.ListNotificationsRequest
}

func (f *fakeNotificationService) GetNotifications(_ context.Context, userID string, req notification.ListNotificationsRequest) (*notification.NotificationListResponse, error) {
	f.listed = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	filter := req.Filter()
	return &notification.NotificationListResponse{
		Notifications: []notification.NotificationResponse{},
		Total:         45,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
		Types:         filter.Types,
	}, nil
}

func (f *fakeNotificationService) MarkAllAsRead(_ context.Context, userID string) error {
	f.allReadFor = userID
	return nil
}

type staticJobs []cron.JobInfo

func (s staticJobs) Jobs() []cron.JobInfo { return s }

type routerHarness struct {
	router        *chi.Mux
	hub           *sse.Hub
	jwt           jwt.Service
	attendance    *fakeAttendanceService
	reminders     *fakeReminderService
	settings      *fakeSettingsService
	notifications *fakeNotificationService
}

var jakarta = time.FixedZone("WIB", 7*60*60)

func newRouterHarness(t *testing.T) *routerHarness {
	t.Helper()
	h := &routerHarness{
		jwt:           jwt.NewJWTService("test-secret", "1h"),
		hub:           sse.NewHubWithBuffer(1),
		attendance:    &fakeAttendanceService{},
		reminders:     &fakeReminderService{},
		settings:      &fakeSettingsService{},
		notifications: &fakeNotificationService{},
	}
	clock := worktime.FixedClock(time.Date(2025, 3, 4, 10, 0, 0, 0, jakarta))
	jobs := staticJobs{{Name: reminder.PassCheckin, Schedule: "every 1m0s"}}

	h.router = NewRouter(
		config.AppConfig{Env: "test", FrontendURL: "http://localhost:3000"},
		h.jwt,
		NewAttendanceHandler(h.attendance),
		NewReminderHandler(h.reminders, jobs, h.hub, clock),
		NewSettingsHandler(h.settings),
		NewNotificationHandler(h.notifications, h.jwt),
		NewAuthHandler(h.jwt),
	)
	return h
}

func (h *routerHarness) token(t *testing.T, role user.Role, employeeID *string) string {
	t.Helper()
	token, _, err := h.jwt.GenerateAccessToken("user-1", employeeID, role)
	require.NoError(t, err)
	return token
}

func (h *routerHarness) employeeToken(t *testing.T) string {
	id := "emp-1"
	return h.token(t, user.RoleEmployee, &id)
}

func (h *routerHarness) operatorToken(t *testing.T) string {
	return h.token(t, user.RoleOperator, nil)
}

func (h *routerHarness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance/clock-in", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RevokedToken(t *testing.T) {
	h := newRouterHarness(t)
	token := h.employeeToken(t)
	require.NoError(t, h.jwt.RevokeToken(context.Background(), token))

	rec := h.do(http.MethodGet, "/api/v1/attendance/today", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RevokeEndpointWithdrawsCallerToken(t *testing.T) {
	h := newRouterHarness(t)
	token := h.operatorToken(t)

	rec := h.do(http.MethodGet, "/api/v1/attendance-reminders/status", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/auth/revoke", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/v1/attendance-reminders/status", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := h.operatorToken(t)
	rec = h.do(http.MethodGet, "/api/v1/attendance-reminders/status", other, "")
	assert.Equal(t, http.StatusOK, rec.Code, "only the presented token is revoked")
}

func TestRouter_SSETokenIsNotAnAccessToken(t *testing.T) {
	h := newRouterHarness(t)
	token, _, err := h.jwt.GenerateSSEToken("user-1")
	require.NoError(t, err)

	rec := h.do(http.MethodGet, "/api/v1/attendance/today", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClockIn_UsesEmployeeFromToken(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance/clock-in", h.employeeToken(t),
		`{"employee_id":"someone-else","latitude":-6.2,"longitude":106.8}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "emp-1", h.attendance.clockIn.EmployeeID)
	require.NotNil(t, h.attendance.clockIn.Latitude)
	assert.InDelta(t, -6.2, *h.attendance.clockIn.Latitude, 1e-9)
}

func TestClockIn_EmptyBody(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance/clock-in", h.employeeToken(t), "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestClockIn_HalfLocationIsRejected(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance/clock-in", h.employeeToken(t), `{"latitude":-6.2}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.Error.Details, "location")
}

func TestClockIn_OperatorHasNoEmployeeProfile(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance/clock-in", h.operatorToken(t), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClockOut_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{attendance.ErrMarkedAbsent, http.StatusConflict, "MARKED_ABSENT"},
		{attendance.ErrAlreadyCheckedOut, http.StatusConflict, "ALREADY_CHECKED_OUT"},
		{attendance.ErrNotCheckedIn, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newRouterHarness(t)
			h.attendance.err = tc.err

			rec := h.do(http.MethodPost, "/api/v1/attendance/clock-out", h.employeeToken(t), "")

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec).Error.Code)
		})
	}
}

func TestReminderTriggers_RequirePermission(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/checkout-pass", h.employeeToken(t), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/attendance-reminders/checkout-pass", h.operatorToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result reminder.PassResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, reminder.PassCheckout, result.Pass)
}

func TestCheckinPass_Force(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/checkin-pass?force=true", h.operatorToken(t), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.reminders.force)
}

func TestAbsenceBackfill_Date(t *testing.T) {
	t.Run("defaults to yesterday", func(t *testing.T) {
		h := newRouterHarness(t)

		rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/absence-backfill", h.operatorToken(t), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, jakarta), h.reminders.backfillDate)
	})

	t.Run("explicit date", func(t *testing.T) {
		h := newRouterHarness(t)

		rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/absence-backfill?date=2025-02-28", h.operatorToken(t), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, jakarta), h.reminders.backfillDate)
	})

	t.Run("malformed date", func(t *testing.T) {
		h := newRouterHarness(t)

		rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/absence-backfill?date=28-02-2025", h.operatorToken(t), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("future date", func(t *testing.T) {
		h := newRouterHarness(t)
		h.reminders.err = reminder.ErrFutureDate

		rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/absence-backfill?date=2025-03-04", h.operatorToken(t), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReminderTrigger_JobInProgress(t *testing.T) {
	h := newRouterHarness(t)
	h.reminders.err = reminder.ErrJobInProgress

	rec := h.do(http.MethodPost, "/api/v1/attendance-reminders/absence-finalizer", h.operatorToken(t), "")

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "JOB_IN_PROGRESS", decode(t, rec).Error.Code)
}

func TestReminderStatus_IncludesJobs(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/attendance-reminders/status", h.operatorToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		ReminderTime     string         `json:"reminder_time"`
		SchedulerEnabled bool           `json:"scheduler_enabled"`
		Jobs             []cron.JobInfo `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &status))
	assert.Equal(t, "08:55", status.ReminderTime)
	assert.True(t, status.SchedulerEnabled)
	require.Len(t, status.Jobs, 1)
	assert.Equal(t, reminder.PassCheckin, status.Jobs[0].Name)
}

func TestReminderStatus_ReportsRealtimeStreams(t *testing.T) {
	h := newRouterHarness(t)
	_, cleanup := h.hub.Subscribe("user-1")
	defer cleanup()
	h.hub.Publish("user-1", sse.Event{Event: "notification"})
	h.hub.Publish("user-1", sse.Event{Event: "notification"})

	rec := h.do(http.MethodGet, "/api/v1/attendance-reminders/status", h.operatorToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Realtime sse.Stats `json:"realtime"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &status))
	assert.Equal(t, sse.Stats{Users: 1, Subscribers: 1, Dropped: 1}, status.Realtime)
}

func TestSettings_Update(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPut, "/api/v1/attendance-settings", h.employeeToken(t),
		`{"reminder_time":"8:30","working_hours":"08:30","weekly_off":["sunday"]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPut, "/api/v1/attendance-settings", h.operatorToken(t),
		`{"reminder_time":"25:00","working_hours":"08:30"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "reminder_time")

	rec = h.do(http.MethodPut, "/api/v1/attendance-settings", h.operatorToken(t),
		`{"reminder_time":"8:30","working_hours":"08:30","weekly_off":["sunday"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, h.settings.updated)
	assert.Equal(t, []string{"sunday"}, h.settings.updated.WeeklyOff)
}

func TestSettings_GetIsReadableByEmployees(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/attendance-settings", h.employeeToken(t), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotifications_ListMeta(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/notifications?page=2&page_size=20", h.employeeToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestNotifications_ListFilters(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/notifications?category=reminder&type=checkout_final,checkin&type=overtime_recorded", h.employeeToken(t), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "reminder", h.notifications.listed.Category)
	assert.Equal(t, []string{"checkout_final", "checkin", "overtime_recorded"}, h.notifications.listed.Types)

	var data struct {
		Types []string `json:"types"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, []string{"checkout_final", "checkin"}, data.Types, "records are dropped from a reminder listing")
}

func TestNotifications_ListRejectsUnknownFilters(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/notifications?category=payroll", h.employeeToken(t), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "category")

	rec = h.do(http.MethodGet, "/api/v1/notifications?type=leave_approved", h.employeeToken(t), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "type")
}

func TestNotifications_MarkAllAsRead(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodPatch, "/api/v1/notifications/read-all", h.employeeToken(t), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", h.notifications.allReadFor)
}

func TestNotifications_StreamRejectsAccessToken(t *testing.T) {
	h := newRouterHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/notifications/stream?token="+h.employeeToken(t), "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
