package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	faceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/go-chi/httplog/v3"
)

const (
	tokenPruneInterval = 15 * time.Minute
	shutdownTimeout    = 15 * time.Second
	eventBuffer        = 32
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attendanceRepo, employeeRepo, closeStore, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("initialize local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage)

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	faceSvc := faceService.NewFaceService(employeeRepo, cfg.Face.MatchThreshold, cfg.Face.CacheTTL)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, fileService, faceSvc, logger)
	authSvc := serviceAuth.NewAuthService(employeeRepo, JWTService, employeeSvc)
	feed := attendanceService.NewFeed(sse.NewHub[attendance.Event](eventBuffer))
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		fileService,
		policy,
		geo.NewEvaluator(cfg.Office()),
		feed,
		logger,
	)

	if cfg.Bootstrap.Email != "" {
		if err := employeeSvc.EnsureAdmin(ctx, employee.RegisterRequest{
			Name:         cfg.Bootstrap.Name,
			Email:        cfg.Bootstrap.Email,
			EmployeeCode: cfg.Bootstrap.EmployeeCode,
			Password:     cfg.Bootstrap.Password,
		}); err != nil {
			return err
		}
	}

	scheduler := cron.NewScheduler(ctx)
	cron.NewMaintenanceJobs(JWTService, tokenPruneInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.AllowedOrigins,
			UploadsDir:     fileStorage.BasePath(),
			MaxBodyBytes:   cfg.App.MaxBodyBytes,
		},
		JWTService,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(authSvc, employeeSvc),
			Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, faceSvc),
			Face:       appHTTP.NewFaceHandler(faceSvc),
			Stream:     appHTTP.NewStreamHandler(feed),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open event streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr, "env", cfg.App.Env, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openRepositories connects the configured backend and returns its repositories with a close func.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (attendance.AttendanceRepository, employee.EmployeeRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(context.Background())
			return nil, nil, nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		closeFn := func() {
			if err := db.Close(context.Background()); err != nil {
				logger.Warn("failed to disconnect mongodb", "error", err)
			}
		}
		return mongodb.NewAttendanceRepository(db), mongodb.NewEmployeeRepository(db), closeFn, nil

	default:
		dsn := cfg.DatabaseURL()
		if cfg.Database.AutoMigrate {
			if err := database.MigrateUp(dsn, logger); err != nil {
				return nil, nil, nil, err
			}
		}
		db, err := database.NewPostgreSQLDB(ctx, dsn)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return postgresql.NewAttendanceRepository(db), postgresql.NewEmployeeRepository(db), db.Close, nil
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	isProduction := strings.EqualFold(app.Env, "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		AddSource:   !isProduction,
		ReplaceAttr: httplog.SchemaECS.Concise(!isProduction).ReplaceAttr,
	}))
}
