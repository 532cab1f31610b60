package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled job. Exactly one of Interval or Spec is set.
type Job struct {
	Name     string
	Interval time.Duration
	Spec     string
	Fn       func(ctx context.Context) error
}

// Schedule renders the trigger for status output.
func (j Job) Schedule() string {
	if j.Spec != "" {
		return j.Spec
	}
	return "@every " + j.Interval.String()
}

// JobInfo is a point-in-time view of a registered job.
type JobInfo struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Running   bool       `json:"running"`
}

type jobState struct {
	lastRun   time.Time
	lastError string
	running   bool
	entryID   robfig.EntryID
}

// Scheduler runs interval jobs on their own tickers and fixed-time jobs
// through a cron engine bound to the organization's location.
type Scheduler struct {
	jobs   []Job
	state  map[string]*jobState
	cron   *robfig.Cron
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		state:  make(map[string]*jobState),
		cron:   robfig.New(robfig.WithLocation(loc)),
		loc:    loc,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a ticker job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	s.state[name] = &jobState{}
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// AddDaily registers a job on a standard five-field cron spec, evaluated in
// the scheduler's location.
func (s *Scheduler) AddDaily(name, spec string, fn func(ctx context.Context) error) error {
	if _, err := robfig.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec for %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Spec: spec, Fn: fn}
	st := &jobState{}
	id, err := s.cron.AddFunc(spec, func() { s.executeJob(job) })
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}
	st.entryID = id

	s.jobs = append(s.jobs, job)
	s.state[name] = st
	slog.Info("Cron job registered", "name", name, "spec", spec, "location", s.loc.String())
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.Interval > 0 {
			s.wg.Add(1)
			go s.runJob(job)
		}
	}
	s.cron.Start()

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single ticker job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	if s.ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.markStart(job.Name, start)
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(s.ctx)
	s.markDone(job.Name, err)

	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

func (s *Scheduler) markStart(name string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.state[name]; ok {
		st.running = true
		st.lastRun = at
	}
}

func (s *Scheduler) markDone(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.state[name]; ok {
		st.running = false
		st.lastError = ""
		if err != nil {
			st.lastError = err.Error()
		}
	}
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		info := JobInfo{Name: job.Name, Schedule: job.Schedule()}
		if st, ok := s.state[job.Name]; ok {
			info.Running = st.running
			info.LastError = st.lastError
			if !st.lastRun.IsZero() {
				t := st.lastRun.In(s.loc)
				info.LastRun = &t
			}
			if job.Spec != "" {
				if next := s.cron.Entry(st.entryID).Next; !next.IsZero() {
					info.NextRun = &next
				}
			}
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
