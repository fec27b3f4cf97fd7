package db_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inventory-automation/app/domain"
	"inventory-automation/app/repository/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesVelocityRepository_Upsert(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewSalesVelocityRepository(conn)
	now := time.Now()

	v := domain.SalesVelocity{ProductID: 1, Daily: 0.5, Weekly: 3.5, Monthly: 15, VarianceDailyDemand: 0.2, DataPoints: 3, UpdatedAt: now}
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (product_id) DO UPDATE`)).
		WithArgs(int64(1), 0.5, 3.5, 15.0, 0.2, int64(3), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Upsert(context.Background(), &v))
}

func TestSalesVelocityRepository_GetByProductID_NotFound(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewSalesVelocityRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sales_velocities WHERE product_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}))

	_, err := repo.GetByProductID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSalesVelocityRepository_GetTop(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewSalesVelocityRepository(conn)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY daily DESC`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "daily", "weekly", "monthly", "demand_std_dev", "data_points", "updated_at"}).
			AddRow(3, 4.0, 28.0, 120.0, 1.1, 90, now).
			AddRow(1, 2.0, 14.0, 60.0, 0.5, 60, now))

	top, err := repo.GetTop(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(3), top[0].ProductID)
}

func TestStockRecommendationRepository_Upsert(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewStockRecommendationRepository(conn)
	now := time.Now()

	rec := domain.StockRecommendation{ProductID: 1, MinStock: 9, MaxStock: 558, SafetyStock: 3, ReorderPoint: 17,
		ForecastedVelocity: 2, Confidence: 0.95, LeadTimeDays: 7}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO stock_recommendations`)).
		WithArgs(int64(1), int64(9), int64(558), int64(3), int64(17), 2.0, 0.95, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"applied_at", "created_at", "updated_at", "inserted"}).
			AddRow(nil, now, now, true))

	created, err := repo.Upsert(context.Background(), &rec)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, rec.AppliedAt)
}

func TestStockRecommendationRepository_MarkApplied_NotFound(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewStockRecommendationRepository(conn)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE stock_recommendations SET applied_at = $1`)).
		WithArgs(at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkApplied(context.Background(), 5, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockRecommendationRepository_GetList_AppliedOnly(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewStockRecommendationRepository(conn)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE applied_at IS NOT NULL`)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "min_stock", "max_stock", "safety_stock", "reorder_point",
			"forecasted_velocity", "confidence", "lead_time_days", "applied_at", "created_at", "updated_at"}).
			AddRow(1, 9, 558, 3, 17, 2.0, 0.95, 7, now, now, now))

	recs, err := repo.GetList(context.Background(), domain.RecommendationFilter{AppliedOnly: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotNil(t, recs[0].AppliedAt)
}

func TestStockRecommendationRepository_GetTop_ByReorderPoint(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewStockRecommendationRepository(conn)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY reorder_point DESC
	LIMIT $1`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "min_stock", "max_stock", "safety_stock", "reorder_point",
			"forecasted_velocity", "confidence", "lead_time_days", "applied_at", "created_at", "updated_at"}).
			AddRow(4, 9, 558, 3, 40, 1.0, 0.95, 7, nil, now, now).
			AddRow(1, 9, 558, 3, 17, 5.0, 0.95, 7, nil, now, now))

	recs, err := repo.GetTop(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(40), recs[0].ReorderPoint)
}

var alertRowColumns = []string{"id", "product_id", "days_without_sale", "last_sale_date", "current_stock", "estimated_value",
	"status", "action", "action_at", "notes", "created_at", "updated_at"}

func TestDeadStockAlertRepository_LockByProductID(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewDeadStockAlertRepository(conn)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM dead_stock_alerts WHERE product_id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(alertRowColumns).
			AddRow(3, 1, 100, now, 20, "560.00", "REVIEWED", "DISCOUNT", now, "Applied DISCOUNT action", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dead_stock_alerts WHERE product_id = $1 FOR UPDATE`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(alertRowColumns))

	alert, err := repo.LockByProductID(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DeadStockStatusReviewed, alert.Status)
	require.NotNil(t, alert.Action)
	assert.Equal(t, domain.DeadStockActionDiscount, *alert.Action)
	assert.True(t, decimal.NewFromInt(560).Equal(alert.EstimatedValue))

	_, err = repo.LockByProductID(context.Background(), 2, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeadStockAlertRepository_GetList_Filters(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewDeadStockAlertRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE 1 = 1 AND status = $1 AND days_without_sale >= $2 AND estimated_value >= $3`)).
		WithArgs("ACTIVE", int64(90), 100.0).
		WillReturnRows(sqlmock.NewRows(alertRowColumns))

	alerts, err := repo.GetList(context.Background(), domain.DeadStockFilter{Status: "ACTIVE", MinDaysWithoutSale: 90, MinEstimatedValue: 100})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDeadStockAlertRepository_ArchiveReviewed(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewDeadStockAlertRepository(conn)

	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'ARCHIVED'`)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.ArchiveReviewed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestDeadStockAlertRepository_GetStats(t *testing.T) {
	conn, mock := setupMockDB(t)
	repo := db.NewDeadStockAlertRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM dead_stock_alerts`)).
		WillReturnRows(sqlmock.NewRows([]string{"active", "reviewed", "archived", "delisted", "total", "value"}).
			AddRow(3, 1, 2, 1, 7, "1234.56"))

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(stats.TotalEstimatedValue))
}
