//go:build integration

package persistence_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/domain/run"
	"github.com/duragraph/duragraph/internal/infrastructure/bricks"
	"github.com/duragraph/duragraph/internal/infrastructure/persistence/postgres"
)

// testPool and testRegistry are shared across every test function in
// this file, set up once in TestMain against a real containerized
// Postgres rather than per-test, the same tradeoff the migrations
// themselves make: schema setup is expensive, row-level isolation via
// unique ids is cheap.
var (
	testPool     *pgxpool.Pool
	testRegistry *brick.Registry
)

// TestMain starts a Postgres container, applies every migration under
// migrations/ through the same golang-migrate path the server uses at
// boot, and tears the container down once the suite finishes.
func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("duragraph_test"),
		tcpostgres.WithUsername("duragraph"),
		tcpostgres.WithPassword("duragraph"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to get container host: %v\n", err)
		os.Exit(1)
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to get container port: %v\n", err)
		os.Exit(1)
	}

	dbConfig := postgres.Config{
		Host:     host,
		Port:     port.Int(),
		User:     "duragraph",
		Password: "duragraph",
		Database: "duragraph_test",
		SSLMode:  "disable",
	}

	if err := postgres.Migrate(dbConfig.DSN(), "file://"+migrationsDir()); err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to apply migrations: %v\n", err)
		os.Exit(1)
	}

	testPool, err = pgxpool.New(ctx, dbConfig.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to create pool: %v\n", err)
		os.Exit(1)
	}

	testRegistry = brick.NewRegistry()
	if err := bricks.RegisterAll(testRegistry, bricks.LLMConfig{}); err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to register bricks: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		fmt.Fprintf(os.Stderr, "persistence: failed to terminate container: %v\n", err)
	}

	os.Exit(code)
}

// migrationsDir resolves the repository's migrations/ directory
// relative to this source file, so the suite runs correctly regardless
// of the working directory `go test` is invoked from.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "migrations")
}

// oneNodeGraph builds a minimal bound graph — a single const_number node
// with no edges — sufficient to exercise the repository layer without
// needing a full engine run.
func oneNodeGraph(t *testing.T, id string) *graph.Stored {
	t.Helper()
	g := graph.New([]graph.Node{
		{ID: "n1", BrickID: "const_number", Arguments: map[string]string{"value": "42"}},
	}, nil)
	require.NoError(t, g.Bind(testRegistry))
	return graph.NewStored(id, "test graph "+id, "created by an integration test", g)
}

func TestGraphRepository_SaveFindListDelete(t *testing.T) {
	ctx := context.Background()
	eventStore := postgres.NewEventStore(testPool)
	repo := postgres.NewGraphRepository(testPool, eventStore)

	stored := oneNodeGraph(t, "graph-"+t.Name())
	require.NoError(t, repo.Save(ctx, stored))
	require.Empty(t, stored.Events(), "Save should flush recorded events")

	found, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	require.Equal(t, stored.ID(), found.ID())
	require.Equal(t, stored.Name(), found.Name())
	require.Len(t, found.Graph().Nodes(), 1)
	require.Equal(t, "const_number", found.Graph().Nodes()[0].BrickID)

	found.Update("renamed", "updated description", found.Graph())
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	require.Equal(t, "renamed", reloaded.Name())
	require.Equal(t, 2, reloaded.Version())

	list, err := repo.List(ctx, 50, 0)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	require.NoError(t, repo.Delete(ctx, stored.ID()))
	_, err = repo.FindByID(ctx, stored.ID())
	require.Error(t, err)
}

func TestRunRepository_SaveFindListActive(t *testing.T) {
	ctx := context.Background()
	eventStore := postgres.NewEventStore(testPool)
	graphRepo := postgres.NewGraphRepository(testPool, eventStore)
	runRepo := postgres.NewRunRepository(testPool, eventStore)

	graphStored := oneNodeGraph(t, "graph-for-run-"+t.Name())
	require.NoError(t, graphRepo.Save(ctx, graphStored))

	runAgg := run.New("run-"+t.Name(), graphStored.ID(), execution.ModeNormal)
	require.NoError(t, runRepo.Save(ctx, runAgg))
	require.Empty(t, runAgg.Events())

	found, err := runRepo.FindByID(ctx, runAgg.ID())
	require.NoError(t, err)
	require.Equal(t, runAgg.ID(), found.ID())
	require.Equal(t, graphStored.ID(), found.GraphID())
	require.Equal(t, run.StatusPending, found.Status())

	active, err := runRepo.FindActiveByGraphID(ctx, graphStored.ID())
	require.NoError(t, err)
	require.Len(t, active, 1)

	byGraph, err := runRepo.FindByGraphID(ctx, graphStored.ID(), 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, byGraph)

	require.NoError(t, runRepo.Delete(ctx, runAgg.ID()))
	_, err = runRepo.FindByID(ctx, runAgg.ID())
	require.Error(t, err)
}

func TestEventStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	eventStore := postgres.NewEventStore(testPool)
	graphRepo := postgres.NewGraphRepository(testPool, eventStore)

	stored := oneNodeGraph(t, "graph-for-events-"+t.Name())
	require.NoError(t, graphRepo.Save(ctx, stored))

	events, err := eventStore.LoadEvents(ctx, "graph", stored.ID())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, "graph.created", events[0]["event_type"])
}

func TestOutbox_PopulatedByEventStoreTrigger(t *testing.T) {
	ctx := context.Background()
	eventStore := postgres.NewEventStore(testPool)
	outbox := postgres.NewOutbox(testPool)
	graphRepo := postgres.NewGraphRepository(testPool, eventStore)

	stored := oneNodeGraph(t, "graph-for-outbox-"+t.Name())
	require.NoError(t, graphRepo.Save(ctx, stored))

	msgs, err := outbox.GetUnpublished(ctx, 100)
	require.NoError(t, err)

	var found bool
	for _, m := range msgs {
		if m.AggregateType == "graph" && m.AggregateID == stored.ID() {
			found = true
			require.NoError(t, outbox.MarkAsPublished(ctx, m.ID))
		}
	}
	require.True(t, found, "saving a graph should populate the outbox via the events-insert trigger")
}
