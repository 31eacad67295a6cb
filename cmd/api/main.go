package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/config"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/payroll-settlement/internal/handler/http"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-settlement/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-settlement/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-settlement/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/payroll-settlement/internal/service/payroll"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	tx         payroll.Transactor
	payroll    payroll.PayrollRepository
	employee   employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "store", cfg.Store.Type, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	locker, closeLocker, err := newLocker(ctx, cfg.Redis)
	if err != nil {
		slog.Error("Failed to initialize settlement lock", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(
		repos.tx,
		repos.payroll,
		repos.employee,
		repos.attendance,
		locker,
		payrollService.Config{
			Policy: payrollService.TimeAccountingPolicy{
				StandardDays:          cfg.Payroll.StandardDays,
				StandardHoursPerShift: cfg.Payroll.StandardHours,
				OvertimeMultiplier:    cfg.Payroll.OvertimeMultiplier,
			},
			Rates: payrollService.DeductionRates{
				Pension: cfg.Payroll.PensionRate,
				Health:  cfg.Payroll.HealthRate,
			},
		},
	)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.employee)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, attendanceHandler, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	})

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(repos.employee, payrollSvc).RegisterJobs(scheduler, cfg.Payroll.AutoGenerateInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", fmt.Sprintf("http://localhost%s", server.Addr), "store", cfg.Store.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		store := memory.NewStore()
		slog.Warn("Using in-memory store; data is lost on restart")
		return repositories{
			tx:         store,
			payroll:    memory.NewPayrollRepository(store),
			employee:   memory.NewEmployeeRepository(store),
			attendance: memory.NewAttendanceRepository(store),
			close:      func() {},
		}, nil
	case config.StoreTypePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			tx:         postgresql.NewTransactor(db),
			payroll:    postgresql.NewPayrollRepository(db),
			employee:   postgresql.NewEmployeeRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			close:      db.Close,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store type %q", cfg.Store.Type)
	}
}

func newLocker(ctx context.Context, cfg config.RedisConfig) (lock.Locker, func(), error) {
	if !cfg.Enabled() {
		return lock.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	return lock.NewRedisLocker(rdb, cfg.LockTTL), closeFn, nil
}
