package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, attendanceHandler AttendanceHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-settlement"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/settlements", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListSettlements)
					r.With(middleware.RequirePermission(user.PermissionPayrollGenerate)).Post("/", payrollHandler.GenerateSettlement)
					r.With(middleware.RequirePermission(user.PermissionPayrollGenerate)).Post("/generate", payrollHandler.GenerateForPeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollPay)).Post("/pay-batch", payrollHandler.PayBatch)

					r.Route("/{id}", func(r chi.Router) {
						r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.GetSettlement)
						r.With(middleware.RequirePermission(user.PermissionPayrollApprove)).Post("/approve", payrollHandler.ApproveSettlement)
						r.With(middleware.RequirePermission(user.PermissionPayrollApprove)).Post("/reject", payrollHandler.RejectSettlement)
						r.With(middleware.RequirePermission(user.PermissionPayrollPay)).Post("/pay", payrollHandler.PaySettlement)
					})
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/summary", payrollHandler.GetPeriodSummary)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/", attendanceHandler.GetMyAttendance)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-in", attendanceHandler.ClockIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-out", attendanceHandler.ClockOut)
			})
		})
	})

	return r
}
