package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reminder/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	appCfg config.AppConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	reminderHandler ReminderHandler,
	settingsHandler SettingsHandler,
	notificationHandler NotificationHandler,
	authHandler AuthHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appCfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-reminder"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appCfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appCfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot set headers; the stream authenticates with an SSE token.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/revoke", authHandler.Revoke)

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.RequireEmployee)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-in", attendanceHandler.ClockIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-out", attendanceHandler.ClockOut)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/today", attendanceHandler.Today)
			})

			r.Route("/attendance-reminders", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionReminderViewStatus)).Get("/status", reminderHandler.Status)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReminderTrigger))
					r.Post("/checkin-pass", reminderHandler.CheckinPass)
					r.Post("/checkout-pass", reminderHandler.CheckoutPass)
					r.Post("/overtime-finalizer", reminderHandler.OvertimeFinalizer)
					r.Post("/absence-finalizer", reminderHandler.AbsenceFinalizer)
					r.Post("/absence-backfill", reminderHandler.AbsenceBackfill)
				})
			})

			r.Route("/attendance-settings", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionSettingsView)).Get("/", settingsHandler.Get)
				r.With(middleware.RequirePermission(user.PermissionSettingsManage)).Put("/", settingsHandler.Update)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionNotificationViewOwn))
				r.Get("/", notificationHandler.List)
				r.Patch("/read-all", notificationHandler.MarkAllAsRead)
				r.Patch("/read", notificationHandler.MarkAsRead)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route not found", http.StatusNotFound)
	})

	return r
}
