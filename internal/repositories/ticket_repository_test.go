package repositories

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farellandr/tixflow/internal/domain"
	"github.com/farellandr/tixflow/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestReserveDecrementsRemaining(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 5)
	repo := NewTicketRepository(db)

	require.NoError(t, repo.Reserve(context.Background(), f.TicketType.ID, 2))
	assert.Equal(t, 3, testutil.Remaining(t, db, f.TicketType.ID))

	require.NoError(t, repo.Release(context.Background(), f.TicketType.ID, 2))
	assert.Equal(t, 5, testutil.Remaining(t, db, f.TicketType.ID))
}

func TestReserveInsufficientLeavesRemaining(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 1)
	repo := NewTicketRepository(db)

	err := repo.Reserve(context.Background(), f.TicketType.ID, 2)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientInventory(err))
	assert.Equal(t, 1, testutil.Remaining(t, db, f.TicketType.ID))
}

func TestReserveUnknownTicketType(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTicketRepository(db)

	err := repo.Reserve(context.Background(), uuid.New(), 1)
	assert.True(t, domain.IsNotFound(err))

	err = repo.Release(context.Background(), uuid.New(), 1)
	assert.True(t, domain.IsNotFound(err))
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 5)
	repo := NewTicketRepository(db)

	assert.True(t, domain.IsValidation(repo.Reserve(context.Background(), f.TicketType.ID, 0)))
	assert.True(t, domain.IsValidation(repo.Release(context.Background(), f.TicketType.ID, -1)))
	assert.Equal(t, 5, testutil.Remaining(t, db, f.TicketType.ID))
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 10)
	repo := NewTicketRepository(db)

	const workers = 25
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(context.Background(), f.TicketType.ID, 1); err == nil {
				succeeded.Add(1)
			} else {
				assert.True(t, domain.IsInsufficientInventory(err))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, 0, testutil.Remaining(t, db, f.TicketType.ID))
}

func TestFindByIDsReturnsKnownOnly(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, 5)
	repo := NewTicketRepository(db)

	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{f.TicketType.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, int64(150000), found[f.TicketType.ID].Price)
}

func TestReserveIssuesSingleConditionalUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "ticket_types" SET "remaining"=remaining - $1 WHERE id = $2 AND remaining >= $3`)).
		WithArgs(3, sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "ticket_types" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	err = NewTicketRepository(db).Reserve(context.Background(), id, 3)
	assert.True(t, domain.IsInsufficientInventory(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
