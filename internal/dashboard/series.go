package dashboard

import (
	"github.com/kramnica/marketplace-manager/internal/entity"
)

// mergeSalesSeries spreads sparse per-day rows over the dense dates backbone.
// Every backbone day gets exactly one point; days without rows stay
// zero-valued.
func mergeSalesSeries(dates []string, rows []entity.SalesPoint) []entity.SalesPoint {
	byDate := make(map[string]entity.SalesPoint, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	series := make([]entity.SalesPoint, len(dates))
	for i, d := range dates {
		if r, ok := byDate[d]; ok {
			series[i] = r
			continue
		}
		series[i] = entity.SalesPoint{Date: d}
	}
	return series
}

func mergeInterestSeries(dates []string, rows []entity.InterestPoint) []entity.InterestPoint {
	byDate := make(map[string]entity.InterestPoint, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}
	series := make([]entity.InterestPoint, len(dates))
	for i, d := range dates {
		if r, ok := byDate[d]; ok {
			series[i] = r
			continue
		}
		series[i] = entity.InterestPoint{Date: d}
	}
	return series
}
