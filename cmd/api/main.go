package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-reminder/internal/handler/http"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/sms"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
	"github.com/cmlabs-hris/attendance-reminder/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-reminder/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/attendance-reminder/internal/service/notification"
	reminderService "github.com/cmlabs-hris/attendance-reminder/internal/service/reminder"
	settingsService "github.com/cmlabs-hris/attendance-reminder/internal/service/settings"
)

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})))

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	clock := worktime.NewClock(loc)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var locker cron.Locker = cron.NewLocalLocker()
	var revocations jwt.RevocationStore = jwt.NewMemoryRevocationStore()
	redisClient, err := database.NewRedisClient(database.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	switch {
	case err != nil:
		slog.Warn("Redis unavailable, job locks and token revocations stay in-process", "addr", cfg.Redis.Addr, "error", err)
	case redisClient != nil:
		defer redisClient.Close()
		locker = cron.NewRedisLocker(redisClient)
		revocations = jwt.NewRedisRevocationStore(redisClient)
		slog.Info("Job locks and token revocations backed by Redis", "addr", cfg.Redis.Addr)
	}

	// Repositories
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	eventRepo := postgresql.NewAttendanceEventRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	reminderLogRepo := postgresql.NewReminderLogRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Channels
	hub := sse.NewHub()
	defer hub.Close()

	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	smsClient := sms.NewClient(cfg.SMS)
	if cfg.IsProduction() && !smsClient.Configured() {
		slog.Warn("Production mode without SMS credentials, SMS reminders will be skipped")
	}

	dispatcher := reminderService.NewDispatcher(notifSvc, smsClient, emailSvc, reminderService.DispatcherConfig{
		SMSEnabled:  cfg.IsProduction(),
		CountryCode: cfg.SMS.CountryCode,
		MinDigits:   cfg.SMS.MinDigits,
	})

	// Services
	settingsSvc := settingsService.NewSettingsService(settingsRepo, holidayRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, eventRepo, employeeRepo, settingsSvc, transactor, clock)
	reminderSvc := reminderService.NewReminderService(
		attendanceRepo,
		eventRepo,
		reminderLogRepo,
		settingsSvc,
		dispatcher,
		transactor,
		locker,
		clock,
		reminderService.Config{
			CheckinWindow:    cfg.Scheduler.CheckinWindow,
			CheckinInterval:  cfg.Scheduler.CheckinInterval,
			CheckoutInterval: cfg.Scheduler.CheckoutInterval,
			OvertimeSpec:     cfg.Scheduler.OvertimeSpec,
			AbsenceSpec:      cfg.Scheduler.AbsenceSpec,
			BackfillSpec:     cfg.Scheduler.BackfillSpec,
			LockTTL:          cfg.Scheduler.JobLockTTL,
		},
	)

	var jobs appHTTP.JobLister
	if cfg.Scheduler.Enabled {
		scheduler := cron.NewScheduler(loc)
		attendanceJobs := cron.NewAttendanceJobs(reminderSvc, cron.AttendanceSchedule{
			CheckinInterval:  cfg.Scheduler.CheckinInterval,
			CheckoutInterval: cfg.Scheduler.CheckoutInterval,
			OvertimeSpec:     cfg.Scheduler.OvertimeSpec,
			AbsenceSpec:      cfg.Scheduler.AbsenceSpec,
			BackfillSpec:     cfg.Scheduler.BackfillSpec,
		}, clock.Now)
		if err := attendanceJobs.RegisterJobs(scheduler); err != nil {
			return fmt.Errorf("register jobs: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		jobs = scheduler
	} else {
		slog.Info("Scheduler disabled, passes run only on manual trigger")
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, jwt.WithRevocationStore(revocations))

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewReminderHandler(reminderSvc, jobs, hub, clock),
		appHTTP.NewSettingsHandler(settingsSvc),
		appHTTP.NewNotificationHandler(notifSvc, JWTService),
		appHTTP.NewAuthHandler(JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Open SSE streams return once the hub closes.
	hub.Close()
	return server.Shutdown(shutdownCtx)
}
