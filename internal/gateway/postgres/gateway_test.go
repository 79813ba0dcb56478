package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"alianca-go/internal/gateway"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type itemRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	GroupID   string    `gorm:"column:group_id"`
	Name      string    `gorm:"column:name"`
	Completed bool      `gorm:"column:completed"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type memberRow struct {
	GroupID string `gorm:"column:group_id"`
	UserID  string `gorm:"column:user_id"`
	Role    string `gorm:"column:role"`
}

func newMockGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return New(db), mock
}

func TestSelectBuildsFiltersOrderAndLimit(t *testing.T) {
	gw, mock := newMockGateway(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "activity_items" WHERE .*"group_id" = \$1.*"category" = \$2.*ORDER BY "created_at" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "name", "completed", "created_at"}).
			AddRow("i1", "g1", "Up", false, created))

	var rows []itemRow
	query := gateway.Where(gateway.Eq("group_id", "g1"), gateway.Eq("category", "movies")).
		OrderBy("created_at", true).
		WithLimit(5)
	require.NoError(t, gw.Select(context.Background(), "activity_items", query, &rows))

	require.Len(t, rows, 1)
	assert.Equal(t, "Up", rows[0].Name)
	assert.Equal(t, created, rows[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectInFilter(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE "id" IN \(\$1,\$2\)`).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "user_id", "role"}))

	var rows []memberRow
	err := gw.Select(context.Background(), "profiles", gateway.Where(gateway.In("id", []string{"u1", "u2"})), &rows)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRejectsUnsafeIdentifiers(t *testing.T) {
	gw, mock := newMockGateway(t)

	var rows []itemRow
	err := gw.Select(context.Background(), "activity_items", gateway.Where(gateway.Eq("name; drop table x", "a")), &rows)
	assert.ErrorIs(t, err, gateway.ErrInvalidQuery)

	err = gw.Select(context.Background(), `bad"table`, gateway.Query{}, &rows)
	assert.ErrorIs(t, err, gateway.ErrInvalidQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTranslatesUniqueViolation(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectExec(`INSERT INTO "group_members"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := gw.Insert(context.Background(), "group_members", &memberRow{GroupID: "g1", UserID: "u1", Role: "member"})
	assert.True(t, errors.Is(err, gateway.ErrConflict), "expected conflict, got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReturnsRowsAffected(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectExec(`UPDATE "activity_items" SET "completed"=\$1 WHERE .*"id" = \$2.*"group_id" = \$3`).
		WithArgs(true, "i1", "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := gw.Update(context.Background(), "activity_items",
		[]gateway.Filter{gateway.Eq("id", "i1"), gateway.Eq("group_id", "g1")},
		map[string]any{"completed": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRequiresFilters(t *testing.T) {
	gw, mock := newMockGateway(t)

	_, err := gw.Delete(context.Background(), "groups", nil)
	assert.ErrorIs(t, err, gateway.ErrMissingFilters)

	mock.ExpectExec(`DELETE FROM "group_members" WHERE "group_id" = \$1`).
		WithArgs("g1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := gw.Delete(context.Background(), "group_members", []gateway.Filter{gateway.Eq("group_id", "g1")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	gw, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "routine_completions" WHERE "user_id" = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := gw.Count(context.Background(), "routine_completions", []gateway.Filter{gateway.Eq("user_id", "u1")})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
