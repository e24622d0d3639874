package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// UploadsDir is served read-only under /uploads when set.
	UploadsDir   string
	MaxBodyBytes int64
}

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Face       FaceHandler
	Stream     StreamHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Snapshots and descriptors arrive inline as base64
		if cfg.MaxBodyBytes > 0 {
			r.Use(chiMiddleware.RequestSize(cfg.MaxBodyBytes))
		}
		r.Use(chiMiddleware.AllowContentType("application/json"))

		authenticated := []func(http.Handler) http.Handler{
			jwtauth.Verifier(JWTService.JWTAuth()),
			middleware.AuthRequired(JWTService),
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(authenticated...).Post("/logout", h.Auth.Logout)
		})

		// Kiosk endpoint, the employee is identified by face
		r.Post("/face/verify", h.Face.Verify)

		r.Route("/employees", func(r chi.Router) {
			r.Use(authenticated...)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Employee.GetMe)
				r.Put("/profile", h.Employee.UpdateProfile)
				r.Put("/credentials", h.Employee.UpdateCredentials)
				r.Put("/biometrics", h.Employee.UpdateBiometrics)
				r.Put("/profile-picture", h.Employee.UploadProfilePicture)
			})

			// Admin only
			r.With(middleware.AdminOnly).Get("/{id}", h.Employee.GetEmployee)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/face-punch", h.Attendance.FacePunch)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(authenticated...)

				r.Post("/punch", h.Attendance.Punch)
				r.Post("/regularization", h.Attendance.RequestRegularization)
				r.Get("/my", h.Attendance.GetMyAttendance)
				r.Get("/stream", h.Stream.Attendance)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Attendance.List)
					r.Get("/summary", h.Attendance.Summary)
					r.Get("/{id}", h.Attendance.Get)
					r.Put("/{id}", h.Attendance.Update)
					r.Post("/{id}/regularization/reject", h.Attendance.RejectRegularization)
				})
			})
		})
	})
	return r
}
