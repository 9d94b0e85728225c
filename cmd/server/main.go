// Package main is the entry point for the Rota API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tolga/rota/internal/config"
	"github.com/tolga/rota/internal/handler"
	"github.com/tolga/rota/internal/repository"
	"github.com/tolga/rota/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}()
	log.Info().Msg("Connected to database")

	staffRepo := repository.NewStaffRepository(db)
	clinicRepo := repository.NewClinicRepository(db)
	dutyTypeRepo := repository.NewDutyTypeRepository(db)
	leaveRepo := repository.NewLeaveRequestRepository(db)
	historyRepo := repository.NewAssignmentHistoryRepository(db)
	planRecordRepo := repository.NewPlanRecordRepository(db)

	planService := service.NewPlanService(
		staffRepo,
		clinicRepo,
		dutyTypeRepo,
		leaveRepo,
		historyRepo,
		planRecordRepo,
		service.PlanConfig{
			SolverWallClock:    cfg.Solver.WallClock,
			SolverWorkers:      cfg.Solver.Workers,
			RestBufferHours:    cfg.Solver.RestBufferHours,
			OnCallWeekdayHours: cfg.Solver.OnCallWeekdayHours,
			OnCallWeekendHours: cfg.Solver.OnCallWeekendHours,
		},
	)

	planHandler := handler.NewPlanHandler(planService)
	router := handler.NewRouter(planHandler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
