package profiles

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbembed "github.com/memohai/scholarbot/db"
	"github.com/memohai/scholarbot/internal/config"
	"github.com/memohai/scholarbot/internal/db"
	"github.com/memohai/scholarbot/internal/db/sqlc"
)

// openTestPool migrates and empties the database named by TEST_POSTGRES_DSN.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	cfg := config.PostgresConfig{URL: dsn}
	require.NoError(t, db.RunMigrate(slog.Default(), cfg, dbembed.MigrationsFS, "up", nil))

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE profiles, lookup RESTART IDENTITY")
	require.NoError(t, err)
	return pool
}

func TestPostgresProfileLifecycle(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	svc := NewService(nil, sqlc.New(pool))

	created, err := svc.CreateFromMatch(ctx, "иванов иван", ChatMeta{ChatID: 100, Username: "ivan"})
	require.NoError(t, err)
	assert.Equal(t, StatusMatchedAwaitingConsent, created.Status)
	assert.Equal(t, "Иванов Иван", created.FullName)

	again, err := svc.CreateFromMatch(ctx, "иванов иван", ChatMeta{ChatID: 200})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "unique name must resolve to the existing row")

	n, err := svc.UpdateScoped(ctx, created.ID, 999, Patch{Status: StatusConsentAgreedAwaitingDocs, Consent: ConsentYes})
	require.NoError(t, err)
	assert.Zero(t, n, "foreign chat must not update")

	n, err = svc.UpdateScoped(ctx, created.ID, 100, Patch{Status: StatusConsentAgreedAwaitingDocs, Consent: ConsentYes})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := svc.FindByChatID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusConsentAgreedAwaitingDocs, got.Status)
	assert.Equal(t, ConsentYes, got.Consent)
	assert.False(t, got.ConsentAt.IsZero())

	_, err = svc.FindByID(ctx, created.ID+1000)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPostgresLookupNames(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	_, err := pool.Exec(ctx, "INSERT INTO lookup (normalized_fio) VALUES ('петров петр'), ('сидорова анна')")
	require.NoError(t, err)

	names, err := sqlc.New(pool).ListLookupNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"петров петр", "сидорова анна"}, names)
}
