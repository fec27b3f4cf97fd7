// Package forecast holds the pure inventory formulas used by the automation
// usecases: service-level Z-scores, safety stock, reorder point, economic
// order quantity, exponential smoothing and dead stock depreciation.
//
// Inputs that make no physical sense (negative lead time, negative variance,
// NaN) are clamped to zero rather than rejected.
package forecast

import "math"

const (
	DefaultServiceLevel       = 0.95
	DefaultReorderCost        = 50.0
	DefaultHoldingCostPercent = 0.25
	DefaultSmoothingAlpha     = 0.3

	depreciationPeriodDays = 30
	depreciationPerPeriod  = 0.10
	maxDepreciation        = 0.90
)

var zScores = map[float64]float64{
	0.90: 1.28,
	0.95: 1.65,
	0.97: 1.88,
	0.99: 2.33,
}

// Params carries the tunable constants of StockLevels.
type Params struct {
	ServiceLevel       float64
	ReorderCost        float64
	HoldingCostPercent float64
}

func DefaultParams() Params {
	return Params{
		ServiceLevel:       DefaultServiceLevel,
		ReorderCost:        DefaultReorderCost,
		HoldingCostPercent: DefaultHoldingCostPercent,
	}
}

// Levels is the result of StockLevels. Invariant: MinStock <= ReorderPoint <= MaxStock.
type Levels struct {
	MinStock     int64 `json:"min_stock"`
	MaxStock     int64 `json:"max_stock"`
	SafetyStock  int64 `json:"safety_stock"`
	ReorderPoint int64 `json:"reorder_point"`
}

// ZScore returns the Z-score of a service level. Unknown levels use the 95% value.
func ZScore(serviceLevel float64) float64 {
	if z, ok := zScores[serviceLevel]; ok {
		return z
	}
	return zScores[DefaultServiceLevel]
}

// SafetyStock = ceil(z * sigma * sqrt(leadTime)).
func SafetyStock(z, demandStdDev, leadTimeDays float64) int64 {
	v := clamp(z) * clamp(demandStdDev) * math.Sqrt(clamp(leadTimeDays))
	return int64(math.Ceil(v))
}

// ReorderPoint = ceil(avgDailyDemand * leadTime + safetyStock).
func ReorderPoint(avgDailyDemand, leadTimeDays float64, safetyStock int64) int64 {
	v := clamp(avgDailyDemand)*clamp(leadTimeDays) + float64(max(safetyStock, 0))
	return int64(math.Ceil(v))
}

// EOQ is the economic order quantity sqrt(2DS/H). A non-positive holding cost
// falls back to one month of demand.
func EOQ(annualDemand, orderCost, holdingCostPerUnit float64) int64 {
	annualDemand = clamp(annualDemand)
	if holdingCostPerUnit <= 0 || math.IsNaN(holdingCostPerUnit) {
		return int64(math.Ceil(annualDemand / 12))
	}
	return int64(math.Ceil(math.Sqrt(2 * annualDemand * clamp(orderCost) / holdingCostPerUnit)))
}

// StockLevels derives min/max/safety stock and reorder point for a product.
// Safety stock uses the effective lead time (leadTime + leadTimeVariance);
// the reorder point uses the nominal lead time.
func StockLevels(dailyDemand, demandStdDev, leadTime, leadTimeVariance float64, p Params) Levels {
	z := ZScore(p.ServiceLevel)
	effectiveLeadTime := clamp(leadTime) + clamp(leadTimeVariance)

	safety := SafetyStock(z, demandStdDev, effectiveLeadTime)
	rop := ReorderPoint(dailyDemand, leadTime, safety)

	eoq := EOQ(clamp(dailyDemand)*365, p.ReorderCost, p.HoldingCostPercent)

	return Levels{
		MinStock:     int64(math.Ceil(float64(rop) / 2)),
		MaxStock:     rop + eoq,
		SafetyStock:  safety,
		ReorderPoint: rop,
	}
}

// ForecastDemand is one step of single exponential smoothing.
func ForecastDemand(actual, previousForecast, alpha float64) float64 {
	return alpha*actual + (1-alpha)*previousForecast
}

// DemandStdDev is the population standard deviation, 0 for no samples.
func DemandStdDev(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		variance += (s - mean) * (s - mean)
	}
	return math.Sqrt(variance / float64(len(samples)))
}

// EstimateDeadStockValue depreciates stock by 10% per full 30 days of age,
// capped at 90%.
func EstimateDeadStockValue(quantity, unitCost float64, ageDays int64) (value, depreciationRate float64) {
	periods := max(ageDays, 0) / depreciationPeriodDays
	depreciationRate = math.Min(float64(periods)*depreciationPerPeriod, maxDepreciation)
	value = math.Max(0, clamp(unitCost)*clamp(quantity)*(1-depreciationRate))
	return value, depreciationRate
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
