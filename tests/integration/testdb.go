// Package integration exercises the posting flow end to end against a
// real PostgreSQL instance started with testcontainers.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated, throwaway posting database. Every call to
// NewTestDB starts its own container, so tests never share state.
type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewTestDB starts a Postgres container, applies the schema migrations
// and returns a connection. Cleanup tears the container down.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orderpost_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("orderpost_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "read container connection string")

	db := openTestDB(t, dsn)
	migrateTestDB(t, db)

	t.Cleanup(func() {
		if pool, err := db.DB(); err == nil {
			pool.Close()
		}
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	return &TestDB{DB: db, t: t}
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	logMode := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logMode = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "open test database")

	pool, err := db.DB()
	require.NoError(t, err, "access connection pool")
	pool.SetMaxOpenConns(5)
	pool.SetMaxIdleConns(2)
	pool.SetConnMaxLifetime(5 * time.Minute)
	return db
}

func migrateTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	path := migrationsDir(t)
	pool, err := db.DB()
	require.NoError(t, err, "access connection pool")

	driver, err := mpg.WithInstance(pool, &mpg.Config{})
	require.NoError(t, err, "create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	require.NoError(t, err, "create migrator")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "apply migrations")
	}
}

// migrationsDir walks up from this file until it finds the migrations
// directory at the repository root.
func migrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "resolve caller path")

	dir := filepath.Dir(file)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found above testdb.go")
	return ""
}

// SeedOrganization inserts an organization row and returns its ID.
func (tdb *TestDB) SeedOrganization(name string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`INSERT INTO organizations (id, name) VALUES (?, ?)`, id, name).Error
	require.NoError(tdb.t, err, "seed organization")
	return id
}

// SeedContragent inserts a contragent row and returns its ID.
func (tdb *TestDB) SeedContragent(name string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`INSERT INTO contragents (id, name) VALUES (?, ?)`, id, name).Error
	require.NoError(tdb.t, err, "seed contragent")
	return id
}

// SeedWarehouse inserts a warehouse row and returns its ID.
func (tdb *TestDB) SeedWarehouse(name string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`INSERT INTO warehouses (id, name) VALUES (?, ?)`, id, name).Error
	require.NoError(tdb.t, err, "seed warehouse")
	return id
}

// SeedUnit inserts a unit row and returns its ID.
func (tdb *TestDB) SeedUnit(name string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`INSERT INTO units (id, name) VALUES (?, ?)`, id, name).Error
	require.NoError(tdb.t, err, "seed unit")
	return id
}

// SeedNomenclature inserts a nomenclature row and returns its ID.
func (tdb *TestDB) SeedNomenclature(name, physicalType, cashbackType string, cashbackValue string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO nomenclatures (id, name, physical_type, cashback_type, cashback_value)
		VALUES (?, ?, ?, ?, ?)
	`, id, name, physicalType, cashbackType, cashbackValue).Error
	require.NoError(tdb.t, err, "seed nomenclature")
	return id
}

// SeedLoyaltyCard inserts a loyalty card row and returns its ID.
func (tdb *TestDB) SeedLoyaltyCard(cardNumber string, balance, cashbackPercent string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO loyalty_cards (id, card_number, balance, cashback_percent)
		VALUES (?, ?, ?, ?)
	`, id, cardNumber, balance, cashbackPercent).Error
	require.NoError(tdb.t, err, "seed loyalty card")
	return id
}

// SeedBlockedPeriod sets the accounting close date for an organization.
func (tdb *TestDB) SeedBlockedPeriod(organizationID uuid.UUID, blockedDate time.Time) {
	tdb.t.Helper()
	err := tdb.DB.Exec(`
		INSERT INTO fifo_settings (organization_id, blocked_date)
		VALUES (?, ?)
		ON CONFLICT (organization_id) DO UPDATE SET blocked_date = EXCLUDED.blocked_date
	`, organizationID, blockedDate).Error
	require.NoError(tdb.t, err, "seed blocked period")
}
