package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/evoteadm/evote/internal/adapters/mail"
	"github.com/evoteadm/evote/internal/adapters/repository/postgres"
	"github.com/evoteadm/evote/internal/adapters/system"
	"github.com/evoteadm/evote/internal/config"
	"github.com/evoteadm/evote/internal/core/services"
	"github.com/evoteadm/evote/pkg/logger"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Sends invitation emails for active polls. Meant to run from cron.
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

	pollRepo := postgres.NewPollRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	invitations := services.NewInvitationService(
		pollRepo, participantRepo, mailer, system.NewClock(), cfg.VoteURLBase, zapLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := invitations.SendPendingInvitations(ctx); err != nil {
		zapLogger.Fatal("send invitations", zap.Error(err))
	}
	zapLogger.Info("invitation run finished")
}
