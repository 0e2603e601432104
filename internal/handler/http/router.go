package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

type Handlers struct {
	Health     HealthHandler
	Auth       AuthHandler
	Attendance AttendanceHandler
	Report     ReportHandler
	Employee   EmployeeHandler
	Events     EventsHandler
}

func NewRouter(JWTService jwt.Service, opts RouterOptions, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	ja := JWTService.JWTAuth()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
		})

		r.Route("/attendance", func(r chi.Router) {
			// Kiosk routes
			r.Post("/mark", h.Attendance.Mark)
			r.Get("/today", h.Attendance.ListToday)
			r.Route("/employee/{employeeID}", func(r chi.Router) {
				r.Get("/", h.Attendance.ListByEmployee)
				r.Get("/status", h.Attendance.GetStatus)
			})

			// EventSource cannot set headers, so the stream also takes ?jwt=
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
				r.Use(middleware.AuthRequired(ja))
				r.Use(middleware.AdminOnly)
				r.Get("/events", h.Events.Stream)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(ja))
				r.Use(middleware.AuthRequired(ja))
				r.Use(middleware.AdminOnly)
				r.Get("/", h.Attendance.ListAll)
				r.Get("/top-performers", h.Report.TopPerformers)
				r.Delete("/{id}", h.Attendance.Delete)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.Employee.List)
			r.Get("/{id}", h.Employee.Get)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(ja))
				r.Use(middleware.AuthRequired(ja))
				r.Use(middleware.AdminOnly)
				r.Post("/", h.Employee.Create)
			})
		})
	})
	return r
}
