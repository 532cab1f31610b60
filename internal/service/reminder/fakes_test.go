package reminder

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
	"github.com/shopspring/decimal"
)

var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}()

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, jakarta)
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

// ============= Attendance =============

type fakeAttendanceRepo struct {
	mu        sync.Mutex
	employees []employee.Employee
	records   map[string]*attendance.Attendance

	failAbsenceFor      string
	listErr             error
	afterListWithoutOut func()
}

func newFakeAttendanceRepo(emps ...employee.Employee) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{employees: emps, records: map[string]*attendance.Attendance{}}
}

func (r *fakeAttendanceRepo) put(a attendance.Attendance) *attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = "att-" + a.EmployeeID + "-" + a.Date.Format("0102")
	}
	if a.Status == "" {
		a.Status = attendance.StatusPresent
	}
	r.records[dayKey(a.EmployeeID, a.Date)] = &a
	return &a
}

func (r *fakeAttendanceRepo) get(employeeID string, date time.Time) *attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dayKey(employeeID, date)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (r *fakeAttendanceRepo) checkOut(employeeID string, date, when time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[dayKey(employeeID, date)]; ok {
		rec.ClockOut = &when
	}
}

func (r *fakeAttendanceRepo) snapshot() map[string]attendance.Attendance {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]attendance.Attendance, len(r.records))
	for k, v := range r.records {
		snap[k] = *v
	}
	return snap
}

func (r *fakeAttendanceRepo) restore(snap map[string]attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]*attendance.Attendance, len(snap))
	for k, v := range snap {
		v := v
		r.records[k] = &v
	}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if r.get(a.EmployeeID, a.Date) != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
	return *r.put(a), nil
}

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	return r.get(employeeID, date), nil
}

func (r *fakeAttendanceRepo) ClockOut(_ context.Context, id string, when time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id && rec.ClockOut == nil && rec.Status != attendance.StatusAbsent {
			rec.ClockOut = &when
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) sortedEmployees() []employee.Employee {
	emps := append([]employee.Employee(nil), r.employees...)
	sort.Slice(emps, func(i, j int) bool { return emps[i].ID < emps[j].ID })
	return emps
}

func (r *fakeAttendanceRepo) ListWithoutCheckin(_ context.Context, date time.Time) ([]employee.Employee, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []employee.Employee
	for _, e := range r.sortedEmployees() {
		if !e.IsActive() {
			continue
		}
		rec := r.get(e.ID, date)
		if rec == nil {
			out = append(out, e)
			continue
		}
		switch rec.Status {
		case attendance.StatusAbsent, attendance.StatusLeave, attendance.StatusPaidLeave, attendance.StatusWeeklyOff:
			continue
		}
		if rec.ClockIn == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListWithoutCheckout(_ context.Context, date time.Time) ([]attendance.EmployeeAttendance, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []attendance.EmployeeAttendance
	for _, e := range r.sortedEmployees() {
		rec := r.get(e.ID, date)
		if e.IsActive() && rec != nil && rec.ClockIn != nil && rec.ClockOut == nil && rec.Status != attendance.StatusAbsent {
			out = append(out, attendance.EmployeeAttendance{Employee: e, Attendance: *rec})
		}
	}
	if r.afterListWithoutOut != nil {
		r.afterListWithoutOut()
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListCompleted(_ context.Context, date time.Time) ([]attendance.EmployeeAttendance, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []attendance.EmployeeAttendance
	for _, e := range r.sortedEmployees() {
		rec := r.get(e.ID, date)
		if rec != nil && rec.ClockIn != nil && rec.ClockOut != nil && rec.Status == attendance.StatusPresent {
			out = append(out, attendance.EmployeeAttendance{Employee: e, Attendance: *rec})
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListActiveWithoutRecord(_ context.Context, date time.Time) ([]employee.Employee, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []employee.Employee
	for _, e := range r.sortedEmployees() {
		if e.IsActive() && r.get(e.ID, date) == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func appendRemark(existing *string, remark string) *string {
	if existing == nil || *existing == "" {
		return &remark
	}
	joined := *existing + "\n" + remark
	return &joined
}

func (r *fakeAttendanceRepo) MarkAbsentIfOpen(_ context.Context, id string, remark string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			if rec.ClockOut != nil || rec.Status == attendance.StatusAbsent {
				return false, nil
			}
			rec.Status = attendance.StatusAbsent
			rec.Remarks = appendRemark(rec.Remarks, remark)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) RecordOvertime(_ context.Context, id string, minutes int, amount decimal.Decimal, remark string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			if rec.OvertimeMinutes != nil && *rec.OvertimeMinutes == minutes {
				return false, nil
			}
			rec.OvertimeMinutes = &minutes
			rec.OvertimeAmount = &amount
			rec.Remarks = appendRemark(rec.Remarks, remark)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) CreateAbsence(_ context.Context, employeeID string, date time.Time, remark string) (bool, error) {
	if employeeID == r.failAbsenceFor {
		return false, errors.New("insert failed")
	}
	if r.get(employeeID, date) != nil {
		return false, nil
	}
	r.put(attendance.Attendance{
		EmployeeID: employeeID,
		Date:       date,
		Status:     attendance.StatusAbsent,
		Remarks:    &remark,
	})
	return true, nil
}

// ============= Events =============

type fakeEventRepo struct {
	mu     sync.Mutex
	events []attendance.Event
}

func (r *fakeEventRepo) Append(_ context.Context, e attendance.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]attendance.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Event
	for _, e := range r.events {
		if e.EmployeeID == employeeID && e.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) kinds() []attendance.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]attendance.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// ============= Reminder log =============

type fakeLogRepo struct {
	mu      sync.Mutex
	entries map[string]reminder.LogEntry
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{entries: map[string]reminder.LogEntry{}}
}

func logKey(employeeID string, date time.Time, kind reminder.Kind) string {
	return dayKey(employeeID, date) + "|" + string(kind)
}

func (r *fakeLogRepo) Claim(_ context.Context, e reminder.LogEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := logKey(e.EmployeeID, e.Date, e.Kind)
	if _, ok := r.entries[k]; ok {
		return false, nil
	}
	r.entries[k] = e
	return true, nil
}

func (r *fakeLogRepo) WasSent(_ context.Context, employeeID string, date time.Time, kind reminder.Kind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[logKey(employeeID, date, kind)]
	return ok, nil
}

func (r *fakeLogRepo) CountByDate(_ context.Context, date time.Time) (map[reminder.Kind]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[reminder.Kind]int{}
	suffix := date.Format("2006-01-02")
	for k, e := range r.entries {
		if strings.Contains(k, "|"+suffix+"|") {
			counts[e.Kind]++
		}
	}
	return counts, nil
}

// ============= Settings =============

type fakeSettings struct {
	cfg      settings.AttendanceSettings
	holidays map[string]bool
}

func (s *fakeSettings) Load(context.Context) settings.AttendanceSettings { return s.cfg }

func (s *fakeSettings) IsWorkingDay(_ context.Context, cfg settings.AttendanceSettings, day time.Time) bool {
	return !cfg.IsWeeklyOff(day) && !s.holidays[day.Format("2006-01-02")]
}

func (s *fakeSettings) Get(context.Context) (settings.SettingsResponse, error) {
	return settings.SettingsResponse{}, nil
}

func (s *fakeSettings) Update(context.Context, settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	return settings.SettingsResponse{}, nil
}

// ============= Dispatcher =============

type sentMessage struct {
	EmployeeID string
	Kind       reminder.Kind
	Message    reminder.Message
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (d *recordingDispatcher) Dispatch(_ context.Context, emp employee.Employee, msg reminder.Message) reminder.DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{EmployeeID: emp.ID, Kind: msg.Kind, Message: msg})
	return reminder.DispatchResult{PanelNotification: true}
}

func (d *recordingDispatcher) count(kind reminder.Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.sent {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// ============= Transactions =============

// snapshotTransactor rolls the fake stores back when fn fails.
type snapshotTransactor struct {
	records *fakeAttendanceRepo
	events  *fakeEventRepo
}

func (t *snapshotTransactor) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	snap := t.records.snapshot()
	t.events.mu.Lock()
	eventCount := len(t.events.events)
	t.events.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.records.restore(snap)
		t.events.mu.Lock()
		t.events.events = t.events.events[:eventCount]
		t.events.mu.Unlock()
		return err
	}
	return nil
}

// ============= Harness =============

type harness struct {
	svc        *ReminderServiceImpl
	records    *fakeAttendanceRepo
	events     *fakeEventRepo
	logs       *fakeLogRepo
	settings   *fakeSettings
	dispatcher *recordingDispatcher
	locker     *cron.LocalLocker
	now        time.Time
}

func newHarness(now time.Time, emps ...employee.Employee) *harness {
	h := &harness{
		records:    newFakeAttendanceRepo(emps...),
		events:     &fakeEventRepo{},
		logs:       newFakeLogRepo(),
		settings:   &fakeSettings{cfg: settings.DefaultSettings(), holidays: map[string]bool{}},
		dispatcher: &recordingDispatcher{},
		locker:     cron.NewLocalLocker(),
		now:        now,
	}
	clock := worktime.FuncClock(jakarta, func() time.Time { return h.now })
	svc := NewReminderService(
		h.records,
		h.events,
		h.logs,
		h.settings,
		h.dispatcher,
		&snapshotTransactor{records: h.records, events: h.events},
		h.locker,
		clock,
		Config{
			CheckinWindow:    30 * time.Minute,
			CheckinInterval:  time.Minute,
			CheckoutInterval: time.Minute,
			OvertimeSpec:     "50 23 * * *",
			AbsenceSpec:      "55 23 * * *",
			BackfillSpec:     "30 0 * * *",
		},
	)
	h.svc = svc.(*ReminderServiceImpl)
	return h
}

func (h *harness) checkIn(employeeID string, when time.Time) {
	h.records.put(attendance.Attendance{
		EmployeeID: employeeID,
		Date:       worktime.DateOf(when),
		ClockIn:    &when,
		Status:     attendance.StatusPresent,
	})
}

func activeEmployee(id, name string) employee.Employee {
	userID := "user-" + id
	return employee.Employee{
		ID:               id,
		UserID:           &userID,
		FullName:         name,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}
