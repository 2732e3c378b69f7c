package db_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"catalogconsole/internal/db"
	"catalogconsole/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestReplace_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := db.NewSnapshotRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "catalog_snapshot"`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "catalog_snapshot"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), []models.Product{
		{ID: 3, Name: "Phone"},
		{ID: 1, Name: "Charger"},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_EmptyOnlyDeletes(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := db.NewSnapshotRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "catalog_snapshot"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	assert.NoError(t, repo.Replace(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_RollsBackOnError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := db.NewSnapshotRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "catalog_snapshot"`)).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), []models.Product{{ID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace catalog snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_KeepsPositionOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := db.NewSnapshotRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"product_id", "position", "name", "category", "size", "price", "quantity", "image", "priority", "description", "fetched_at"}).
		AddRow(7, 0, "Laptop", "Laptops", "medium", 999.5, 2, "http://cdn/l.png", 1, "thin", now).
		AddRow(3, 1, "Phone", "Smartphones", "small", 499.0, 5, "", 0, "", now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "catalog_snapshot" ORDER BY position`)).
		WillReturnRows(rows)

	items, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.Product{
		ID:          7,
		Name:        "Laptop",
		Category:    models.CategoryLaptops,
		Size:        models.SizeMedium,
		Price:       999.5,
		Quantity:    2,
		Image:       "http://cdn/l.png",
		Priority:    1,
		Description: "thin",
	}, items[0])
	assert.Equal(t, int64(3), items[1].ID)
}

func TestLoad_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := db.NewSnapshotRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "catalog_snapshot"`)).
		WillReturnError(errors.New("connection reset"))

	items, err := repo.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, items)
}
