package e2e_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgOnce      sync.Once
	pgDSN       string
	pgErr       error
	testCleanup = func() {}
)

// getSharedPostgresDatabase starts one PostgreSQL container for the whole
// run and returns its DSN. The container is terminated from TestMain.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN, pgErr = startPostgres()
	})
	if pgErr != nil {
		t.Fatalf("postgres: %v", pgErr)
	}

	return pgDSN
}

func startPostgres() (string, error) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("folio"),
		pgcontainer.WithUsername("folio"),
		pgcontainer.WithPassword("folio"),
		pgcontainer.BasicWaitStrategies(),
	)
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	testCleanup = func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", fmt.Errorf("connection string: %w", err)
	}

	// The server binary connects on its own; make sure the database accepts
	// connections before handing the DSN over.
	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(pingCtx, dsn)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(pingCtx); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}

	return dsn, nil
}
