package db_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/app/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reorderTaskRowColumns = []string{"id", "product_id", "supplier_id", "quantity", "status", "reason", "reorder_point",
	"expected_at", "ordered_at", "received_at", "cost", "notes", "created_at", "updated_at"}

func TestReorderTaskRepository_Create(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)
	now := time.Now()
	supplierID := int64(4)

	task := domain.ReorderTask{
		ProductID:    1,
		SupplierID:   &supplierID,
		Quantity:     35,
		Status:       domain.ReorderStatusPending,
		Reason:       domain.ReorderReasonLowStock,
		ReorderPoint: 17,
		ExpectedAt:   now,
		Cost:         decimal.NewNullDecimal(decimal.NewFromInt(70)),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reorder_tasks`)).
		WithArgs(int64(1), int64(4), int64(35), "PENDING", "LOW_STOCK", int64(17), now, "70", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

	require.NoError(t, repo.Create(context.Background(), &task, nil))
	assert.Equal(t, int64(9), task.ID)
}

func TestReorderTaskRepository_Create_OpenTaskExists(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reorder_tasks`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reorder_tasks_open_product_idx"})

	err := repo.Create(context.Background(), &domain.ReorderTask{ProductID: 1, Status: domain.ReorderStatusPending}, nil)
	assert.ErrorIs(t, err, domain.ErrReorderInFlight)
}

func TestReorderTaskRepository_GetByID(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reorder_tasks WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(reorderTaskRowColumns).
			AddRow(9, 1, nil, 100, "ORDERED", "MANUAL", 2, now, now, nil, nil, "", now, now))

	task, err := repo.GetByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, task.SupplierID)
	assert.Equal(t, domain.ReorderStatusOrdered, task.Status)
	assert.NotNil(t, task.OrderedAt)
	assert.Nil(t, task.ReceivedAt)
	assert.False(t, task.Cost.Valid)
}

func TestReorderTaskRepository_HasOpenTask(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`status IN ('PENDING', 'ORDERED')`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := repo.HasOpenTask(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestReorderTaskRepository_Update_NotFound(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reorder_tasks`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), domain.ReorderTask{ID: 404, Status: domain.ReorderStatusCancelled}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReorderTaskRepository_GetList_Filters(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE 1 = 1 AND status = $1 AND supplier_id = $2 ORDER BY created_at DESC`)).
		WithArgs("PENDING", int64(4)).
		WillReturnRows(sqlmock.NewRows(reorderTaskRowColumns))

	tasks, err := repo.GetList(context.Background(), domain.ReorderTaskFilter{Status: "PENDING", SupplierID: 4})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestReorderTaskRepository_GetStats(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewReorderTaskRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(SUM(cost) FILTER (WHERE status IN ('PENDING', 'ORDERED')), 0)`)).
		WillReturnRows(sqlmock.NewRows([]string{"pending", "ordered", "received", "cancelled", "total", "cost"}).
			AddRow(2, 1, 5, 1, 9, "140.00"))

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(9), stats.Total)
	assert.True(t, decimal.NewFromInt(140).Equal(stats.TotalPendingCost))
}
