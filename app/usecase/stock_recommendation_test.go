package usecase_test

import (
	"context"
	"testing"

	"inventory-automation/app/domain"
	"inventory-automation/app/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecommendationUsecase(s *memStore) domain.StockRecommendationUsecase {
	cfg := testConfig()
	velocity := usecase.NewSalesVelocityUsecase(productRepo{s}, orderLineRepo{s}, velocityRepo{s}, cfg)
	return usecase.NewStockRecommendationUsecase(productRepo{s}, supplierRepo{s}, velocityRepo{s}, recommendationRepo{s}, velocity, cfg)
}

func TestGenerateRecommendation_ReferenceLevels(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: 2, VarianceDailyDemand: 0.5, DataPoints: 15}
	s.suppliers[1] = []domain.ProductSupplier{{ProductID: 1, SupplierID: 7, LeadTime: 7}}

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), rec.SafetyStock)
	assert.Equal(t, int64(17), rec.ReorderPoint)
	assert.Equal(t, int64(9), rec.MinStock)
	assert.Equal(t, int64(17+541), rec.MaxStock)
	assert.Equal(t, int64(7), rec.LeadTimeDays)
	assert.InDelta(t, 0.95, rec.Confidence, 1e-9)
	assert.InDelta(t, 2.0, rec.ForecastedVelocity, 1e-9)
	assert.False(t, rec.IsDefault)
	assert.Equal(t, rec.ReorderPoint, s.recs[1].ReorderPoint)
}

func TestGenerateRecommendation_ConfidenceScalesWithDataPoints(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: 2, VarianceDailyDemand: 0.5, DataPoints: 6}

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.95*6/15, rec.Confidence, 1e-9)
}

func TestGenerateRecommendation_ShortestSupplierLeadTime(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: 2, VarianceDailyDemand: 0.5, DataPoints: 15}
	s.suppliers[1] = []domain.ProductSupplier{
		{ProductID: 1, SupplierID: 1, LeadTime: 10},
		{ProductID: 1, SupplierID: 2, Supplier: domain.Supplier{ID: 2, LeadTime: 3}},
	}

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), rec.LeadTimeDays)
	assert.Equal(t, int64(2*3+rec.SafetyStock), rec.ReorderPoint)
}

func TestGenerateRecommendation_DefaultForZeroVelocity(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, rec.IsDefault)
	assert.Equal(t, int64(10), rec.MinStock)
	assert.Equal(t, int64(10), rec.SafetyStock)
	assert.Equal(t, int64(20), rec.ReorderPoint)
	assert.Equal(t, int64(60), rec.MaxStock)
	assert.Equal(t, 0.5, rec.Confidence)

	assert.Empty(t, s.recs)
	assert.Contains(t, s.velocities, int64(1), "missing velocity is computed on demand")
}

func TestGenerateRecommendation_SmoothsAgainstPreviousForecast(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: 2, VarianceDailyDemand: 0.5, DataPoints: 15}
	s.recs[1] = domain.StockRecommendation{ProductID: 1, ForecastedVelocity: 1}

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.3, rec.ForecastedVelocity, 1e-9)
}

func TestGenerateRecommendation_LevelsAreOrdered(t *testing.T) {
	cases := []struct {
		daily, sigma float64
		stock        int64
	}{
		{0.1, 0, 0},
		{0.5, 2, 5},
		{3, 1.2, 100},
		{40, 15, 3},
	}

	for _, tc := range cases {
		s := newMemStore()
		s.addProduct(domain.Product{ID: 1, Stock: tc.stock, Active: true})
		s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: tc.daily, VarianceDailyDemand: tc.sigma, DataPoints: 10}

		rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
		require.NoError(t, err)

		assert.LessOrEqual(t, rec.MinStock, rec.ReorderPoint)
		assert.LessOrEqual(t, rec.ReorderPoint, rec.MaxStock)
		assert.LessOrEqual(t, rec.SafetyStock, rec.ReorderPoint)
		assert.GreaterOrEqual(t, rec.SafetyStock, int64(0))
	}
}

func TestGenerateAllRecommendations_Counts(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	s.addProduct(domain.Product{ID: 2, Stock: 40, Active: true})
	s.addProduct(domain.Product{ID: 3, Stock: 40, Active: true})
	s.addProduct(domain.Product{ID: 4, Stock: 40, Active: false})
	s.velocities[1] = domain.SalesVelocity{ProductID: 1, Daily: 2, DataPoints: 15}
	s.velocities[2] = domain.SalesVelocity{ProductID: 2, Daily: 1, DataPoints: 15}
	s.recs[2] = domain.StockRecommendation{ProductID: 2, ForecastedVelocity: 1}

	result, err := newRecommendationUsecase(s).GenerateAllRecommendations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RecommendationSweepResult{Generated: 1, Updated: 1, Defaulted: 1}, result)
}

func TestApplyRecommendation(t *testing.T) {
	s := newMemStore()
	s.recs[1] = domain.StockRecommendation{ProductID: 1, ReorderPoint: 17}
	uc := newRecommendationUsecase(s)

	rec, err := uc.ApplyRecommendation(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, rec.AppliedAt)

	_, err = uc.ApplyRecommendation(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	applied, err := uc.ListRecommendations(context.Background(), domain.RecommendationFilter{AppliedOnly: true})
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestGenerateAllRecommendations_StopsWhenContextDone(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newRecommendationUsecase(s).GenerateAllRecommendations(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, domain.RecommendationSweepResult{}, result)
	assert.Empty(t, s.recs)
}

func TestGenerateRecommendation_ZeroVelocityKeepsStoredRecommendation(t *testing.T) {
	s := newMemStore()
	s.addProduct(domain.Product{ID: 1, Stock: 40, Active: true})
	stored := domain.StockRecommendation{ProductID: 1, MinStock: 9, MaxStock: 558, SafetyStock: 3, ReorderPoint: 17}
	s.recs[1] = stored

	rec, err := newRecommendationUsecase(s).GenerateRecommendation(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, rec.IsDefault)
	assert.Equal(t, stored, s.recs[1])
}
