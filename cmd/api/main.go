package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid APP_TIMEZONE: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, clock)
	if err != nil {
		log.Fatal("Failed to initialize JWT service: ", err)
	}

	var (
		attendanceRepo attendance.RecordRepository
		employeeRepo   employee.EmployeeRepository
		locker         attendance.Locker
		healthCheck    appHTTP.Pinger
	)
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolOptions)
		if err != nil {
			log.Fatal("Error connecting to database: ", err)
		}
		defer db.Close()

		attendanceRepo = postgresql.NewAttendanceRepository(db)
		employeeRepo = postgresql.NewEmployeeRepository(db)
		locker = postgresql.NewEmployeeLocker(db)
		healthCheck = db
	case config.StoreDriverMemory:
		slog.Warn("using in-memory store; records are lost on restart")
		attendanceRepo = memory.NewAttendanceRepository(clock)
		employeeRepo = memory.NewEmployeeRepository(clock)
		locker = memory.NewEmployeeLocker()
	default:
		log.Fatal("Unsupported store driver: ", cfg.Store.Driver)
	}

	hub := sse.NewHub()

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		employeeRepo,
		locker,
		clock,
		loc,
		attendanceService.WithPublisher(sse.NewAttendanceFeed(hub)),
	)
	reportSvc := reportService.NewReportService(attendanceRepo, employeeRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	authSvc := serviceAuth.NewAuthService(JWTService, cfg.Admin.Email, cfg.Admin.PasswordHash)

	scheduler := cron.NewScheduler(clock)
	cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.ReconcileInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       logLevel,
		},
		appHTTP.Handlers{
			Health:     appHTTP.NewHealthHandler(healthCheck),
			Auth:       appHTTP.NewAuthHandler(authSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Events:     appHTTP.NewEventsHandler(hub, clock),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// end live streams when shutdown starts
	server.RegisterOnShutdown(hub.Close)

	go func() {
		slog.Info("server running", "addr", server.Addr, "store", cfg.Store.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
