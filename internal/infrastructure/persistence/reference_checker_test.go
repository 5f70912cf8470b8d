package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/sales"
)

func newMockReferenceChecker(t *testing.T) (*GormReferenceChecker, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormReferenceChecker(gormDB), mock, mockDB
}

func TestGormReferenceChecker_MissingIDs(t *testing.T) {
	t.Run("all ids exist", func(t *testing.T) {
		checker, mock, mockDB := newMockReferenceChecker(t)
		defer mockDB.Close()

		a, b := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT "id" FROM "contragents" WHERE id IN \(\$1,\$2\)`).
			WithArgs(a, b).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a).AddRow(b))

		missing, err := checker.MissingIDs(context.Background(), sales.RefContragent, []uuid.UUID{a, b})

		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("reports only the absent ids", func(t *testing.T) {
		checker, mock, mockDB := newMockReferenceChecker(t)
		defer mockDB.Close()

		a, b, c := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT "id" FROM "nomenclatures" WHERE id IN`).
			WithArgs(a, b, c).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(b))

		missing, err := checker.MissingIDs(context.Background(), sales.RefNomenclature, []uuid.UUID{a, b, c})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{a, c}, missing)
	})

	t.Run("empty input needs no query", func(t *testing.T) {
		checker, mock, mockDB := newMockReferenceChecker(t)
		defer mockDB.Close()

		missing, err := checker.MissingIDs(context.Background(), sales.RefWarehouse, nil)

		require.NoError(t, err)
		assert.Empty(t, missing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		checker, _, mockDB := newMockReferenceChecker(t)
		defer mockDB.Close()

		_, err := checker.MissingIDs(context.Background(), sales.RefKind("planet"), []uuid.UUID{uuid.New()})

		assert.Error(t, err)
	})

	t.Run("covers every validated kind", func(t *testing.T) {
		kinds := []sales.RefKind{
			sales.RefOrganization, sales.RefContragent, sales.RefContract,
			sales.RefWarehouse, sales.RefSalesManager, sales.RefLoyaltyCard,
			sales.RefNomenclature, sales.RefUnit, sales.RefPriceType,
		}
		for _, kind := range kinds {
			assert.Contains(t, refTables, kind)
		}
	})
}
