package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gdb, mock
}

func TestIncrementUsageBelowLimit_Affected(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)
	id := uuid.New()

	// gorm parenthesizes the composite Where and appends the soft-delete guard.
	mock.ExpectExec(`UPDATE "accounts" SET .+usage_count.+ WHERE \(id = \$\d+ AND usage_count < \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.IncrementUsageBelowLimit(context.Background(), id, 1)
	require.NoError(t, err)
	assert.True(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementUsageBelowLimit_AtLimit(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)
	id := uuid.New()

	// Counter already at the limit: the guard clause matches no row.
	mock.ExpectExec(`UPDATE "accounts" SET .+ WHERE \(id = \$\d+ AND usage_count < \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.IncrementUsageBelowLimit(context.Background(), id, 1)
	require.NoError(t, err)
	assert.False(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementUsage_MissingAccount(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)

	mock.ExpectExec(`UPDATE "accounts" SET .+usage_count.+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTier(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)

	mock.ExpectExec(`UPDATE "accounts" SET .+subscription_tier.+ WHERE id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateTier(context.Background(), uuid.New(), "pro")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetAllMonthlyUsage(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)

	mock.ExpectExec(`UPDATE "accounts" SET .+usage_period_start.+ WHERE usage_period_start < \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 7))

	affected, err := repo.ResetAllMonthlyUsage(context.Background(), 1756684800)
	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindById_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewAccountRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	account, err := repo.FindById(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.NoError(t, mock.ExpectationsWereMet())
}
