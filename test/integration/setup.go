package integration

import (
	"context"
	"database/sql"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	handler "github.com/evoteadm/evote/internal/adapters/handler/http"
	"github.com/evoteadm/evote/internal/adapters/repository/postgres"
	"github.com/evoteadm/evote/internal/adapters/system"
	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/services"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := pgmodule.Run(ctx, "postgres:15-alpine",
		pgmodule.WithDatabase("testdb"),
		pgmodule.WithUsername("user"),
		pgmodule.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *stdhttp.Client
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, applyMigrations(db))

	pollRepo := postgres.NewPollRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	userRepo := postgres.NewUserRepository(db)

	clock := system.NewClock()
	tokens := system.NewTokenSource()
	logger := zap.NewNop()

	permissions := services.NewPermissionService(pollRepo, roleRepo, participantRepo)
	audit := services.NewAuditService(auditRepo, permissions, pollRepo, clock, logger)
	polls := services.NewPollService(pollRepo, userRepo, roleRepo, permissions, audit, clock, logger)
	participants := services.NewParticipantService(pollRepo, participantRepo, userRepo, permissions, audit, tokens, clock, logger)
	votes := services.NewVoteService(pollRepo, participantRepo, voteRepo, auditRepo, userRepo, permissions, audit, clock, logger)
	results := services.NewResultsService(participantRepo, voteRepo, clock, logger)
	sessions := services.NewSessionService(userRepo, clock, testJWTSecret)

	router := handler.NewHandler(sessions, handler.Handlers{
		Session:     handler.NewSessionHandler(sessions),
		Poll:        handler.NewPollHandler(polls, permissions),
		Participant: handler.NewParticipantHandler(participants),
		Vote:        handler.NewVoteHandler(votes),
		Results:     handler.NewResultsHandler(pollRepo, participantRepo, permissions, results),
		Audit:       handler.NewAuditHandler(audit),
	})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// createUser inserts a user with the given role and returns its id and email.
// The password is always "password".
func (app *TestApp) createUser(t *testing.T, role domain.Role) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = app.DB.Exec(
		"INSERT INTO users (id, email, name, password_hash, role) VALUES ($1, $2, $3, $4, $5)",
		userID, email, fmt.Sprintf("User %s", userID), string(hash), string(role))
	require.NoError(t, err)
	return userID, email
}

// login exchanges credentials for the access token cookie value.
func (app *TestApp) login(t *testing.T, email string) string {
	t.Helper()

	body := strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"password"}`, email))
	resp, err := app.Client.Post(app.Server.URL+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			return c.Value
		}
	}
	t.Fatal("no access_token cookie in login response")
	return ""
}
