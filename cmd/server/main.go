package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/evoteadm/evote/internal/adapters/handler/http"
	"github.com/evoteadm/evote/internal/adapters/repository/postgres"
	"github.com/evoteadm/evote/internal/adapters/system"
	"github.com/evoteadm/evote/internal/config"
	"github.com/evoteadm/evote/internal/core/services"
	"github.com/evoteadm/evote/pkg/logger"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		zapLogger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		zapLogger.Fatal("ping database", zap.Error(err))
	}

	pollRepo := postgres.NewPollRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	userRepo := postgres.NewUserRepository(db)

	clock := system.NewClock()
	tokens := system.NewTokenSource()

	permissions := services.NewPermissionService(pollRepo, roleRepo, participantRepo)
	audit := services.NewAuditService(auditRepo, permissions, pollRepo, clock, zapLogger)
	polls := services.NewPollService(pollRepo, userRepo, roleRepo, permissions, audit, clock, zapLogger)
	participants := services.NewParticipantService(pollRepo, participantRepo, userRepo, permissions, audit, tokens, clock, zapLogger)
	votes := services.NewVoteService(pollRepo, participantRepo, voteRepo, auditRepo, userRepo, permissions, audit, clock, zapLogger)
	results := services.NewResultsService(participantRepo, voteRepo, clock, zapLogger)
	sessions := services.NewSessionService(userRepo, clock, cfg.JWTSecret)

	handler := http.NewHandler(sessions, http.Handlers{
		Session:     http.NewSessionHandler(sessions),
		Poll:        http.NewPollHandler(polls, permissions),
		Participant: http.NewParticipantHandler(participants),
		Vote:        http.NewVoteHandler(votes),
		Results:     http.NewResultsHandler(pollRepo, participantRepo, permissions, results),
		Audit:       http.NewAuditHandler(audit),
	})

	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.HTTPPort, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zapLogger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			zapLogger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("shutdown", zap.Error(err))
	}
}
