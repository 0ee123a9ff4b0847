package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/reader/internal/api"
	"github.com/dom/reader/internal/config"
	"github.com/dom/reader/internal/email"
	"github.com/dom/reader/internal/repository"
	repoPostgres "github.com/dom/reader/internal/repository/postgres"
	"github.com/dom/reader/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a throwaway PostgreSQL instance with the schema migrated.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts a fresh container for t and connects through the same
// code path the server uses. The container is removed when t finishes.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_reader"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		tcPostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := repoPostgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	return &TestDB{Container: container, DB: db, DSN: dsn}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"user_tokens",
		"read_books",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:        "0", // Random port
		Environment: "test",
		AppBaseURL:  "http://reader.test",
		JWT: config.JWTConfig{
			Secret:        "test-jwt-secret-key-for-testing-only",
			Issuer:        "reader-test",
			Audience:      "reader-test-client",
			ExpiryMinutes: 60,
		},
		Email: config.EmailConfig{
			Provider:    "log",
			FromAddress: "noreply@reader.test",
			SendTimeout: 5 * time.Second,
		},
		GoogleBooks: config.GoogleBooksConfig{
			BaseURL:    "http://127.0.0.1:0/books/v1/volumes",
			MaxResults: 40,
		},
		Codes: config.CodesConfig{
			EmailConfirmationTTL: time.Hour,
			PasswordResetTTL:     time.Hour,
			PurgeSchedule:        "0 0 * * * *",
		},
	}
}

// NewTestServices wires services against testDB with a recording mailer.
func NewTestServices(t *testing.T, testDB *TestDB, cfg *config.Config) (*service.Services, *repository.Repositories, *RecordingSender, *email.Dispatcher) {
	t.Helper()

	repos := repoPostgres.NewRepositories(testDB.DB)
	sender := NewRecordingSender()
	mailer := email.NewDispatcher(sender, cfg.Email.SendTimeout)
	t.Cleanup(mailer.Wait)

	services, err := service.NewServices(repos, cfg, mailer)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	return services, repos, sender, mailer
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Mail     *RecordingSender
	Mailer   *email.Dispatcher
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	services, repos, sender, mailer := NewTestServices(t, testDB, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Mail:     sender,
		Mailer:   mailer,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
