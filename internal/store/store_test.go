package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lostfound-desk/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteDB opens a private in-memory database with the garment table.
func newSQLiteDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.Garment{}))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}

func jacket(rut string) *model.Garment {
	return &model.Garment{
		OwnerName: "Ana Pérez",
		RUT:       rut,
		Phone:     "+56912345678",
		Email:     "ana@example.com",
		Type:      model.TypeJacket,
		Size:      model.SizeM,
		Condition: model.ConditionGood,
	}
}

func TestGormStore_CreateGarment_Mock(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedErr      error
		expectedID       int64
	}{
		{
			name: "New garment is inserted",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "prendas"`)).
					WithArgs("12345678-9", "Chaqueta", "M", "Bueno", "Encontrada - Pendiente de devolución").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "prendas"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
				mock.ExpectCommit()
			},
			expectedID: 41,
		},
		{
			name: "Similar pending garment is a duplicate",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "prendas"`)).
					WithArgs("12345678-9", "Chaqueta", "M", "Bueno", "Encontrada - Pendiente de devolución").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			expectedErr: ErrDuplicate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB, nil)

			tc.mockExpectations(mock)

			g := jacket("12.345.678-9")
			err := store.CreateGarment(context.Background(), g)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedID, g.ID)
				assert.Equal(t, "12345678-9", g.RUTKey)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_UpdateReturnStatus_NotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "prendas" WHERE "prendas"."id" = $1`)).
		WithArgs(99, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := store.UpdateReturnStatus(context.Background(), 99, model.StatusReturned, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newSQLiteDB(t), nil)

	first := jacket("12.345.678-9")
	require.NoError(t, store.CreateGarment(ctx, first))
	require.NotZero(t, first.ID)

	// Same owner, type, size and condition while still pending.
	assert.ErrorIs(t, store.CreateGarment(ctx, jacket("12345678-9")), ErrDuplicate)

	capGarment := jacket("12345678-9")
	capGarment.Type = model.TypeCap
	require.NoError(t, store.CreateGarment(ctx, capGarment))

	other := jacket("11111111-1")
	require.NoError(t, store.CreateGarment(ctx, other))

	found, err := store.FindByRUT(ctx, "12345678 9")
	require.NoError(t, err)
	require.Len(t, found, 2)
	ids := []int64{found[0].ID, found[1].ID}
	assert.ElementsMatch(t, []int64{first.ID, capGarment.ID}, ids)
	for _, g := range found {
		assert.False(t, g.ReturnStatus.IsSet())
		assert.Nil(t, g.ReturnedAt)
	}

	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	updated, err := store.UpdateReturnStatus(ctx, first.ID, model.StatusReturned, at)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, updated.ReturnStatus)
	require.NotNil(t, updated.ReturnedAt)
	assert.True(t, at.Equal(*updated.ReturnedAt))

	// Returned garments no longer block a new intake of the same kind.
	assert.NoError(t, store.CreateGarment(ctx, jacket("12345678-9")))

	// Any status may follow any other.
	_, err = store.UpdateReturnStatus(ctx, first.ID, model.StatusDiscarded, at)
	require.NoError(t, err)
	_, err = store.UpdateReturnStatus(ctx, first.ID, model.StatusReturned, at)
	require.NoError(t, err)

	_, err = store.UpdateReturnStatus(ctx, 9999, model.StatusDonated, at)
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := store.FindByRUT(ctx, "99999999-9")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
