// Package stats computes batch-level summaries over classification
// predictions and forecast results. Empty input yields zeroed aggregates,
// never a division error.
package stats

import (
	"math"
	"sort"

	"github.com/canopywatch/canopy-engine/pkg/models"
)

// Classification summarizes a batch of labeled predictions: class
// distribution plus mean/min/max/std of confidence.
func Classification(predictions []models.ClassificationPrediction) models.ClassificationStatistics {
	out := models.ClassificationStatistics{
		TotalRows:         len(predictions),
		ClassDistribution: make(map[string]int),
	}
	if len(predictions) == 0 {
		return out
	}

	confidences := make([]float64, len(predictions))
	for i, p := range predictions {
		out.ClassDistribution[p.PredictedClass]++
		confidences[i] = p.Confidence
	}
	agg := aggregate(confidences)
	out.AverageConfidence = agg.Mean
	out.MinConfidence = agg.Min
	out.MaxConfidence = agg.Max
	out.StdConfidence = agg.Std
	return out
}

// Forecast summarizes a batch of per-record forecast results:
// success/failure counts, the health status distribution across every
// (record, year) forecast, per-year aggregates in year order, and one
// overall aggregate across the whole horizon. Failed records contribute
// to the counts only.
func Forecast(results []models.RecordForecast) models.ForecastStatistics {
	out := models.ForecastStatistics{
		TotalRecords:       len(results),
		StatusDistribution: make(map[string]int),
	}

	byYear := make(map[int][]float64)
	statusByYear := make(map[int]map[string]int)
	var all []float64
	for _, r := range results {
		if !r.Success {
			out.Failed++
			continue
		}
		out.Successful++
		for _, yf := range r.Forecasts {
			out.StatusDistribution[string(yf.HealthStatus)]++
			byYear[yf.Year] = append(byYear[yf.Year], yf.Prediction)
			if statusByYear[yf.Year] == nil {
				statusByYear[yf.Year] = make(map[string]int)
			}
			statusByYear[yf.Year][string(yf.HealthStatus)]++
			all = append(all, yf.Prediction)
		}
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)
	out.Years = years

	out.PerYear = make([]models.YearAggregate, 0, len(years))
	for _, year := range years {
		out.PerYear = append(out.PerYear, models.YearAggregate{
			Year:               year,
			Aggregate:          aggregate(byYear[year]),
			StatusDistribution: statusByYear[year],
		})
	}
	out.Overall = aggregate(all)
	return out
}

// aggregate computes mean/min/max and the population standard deviation.
func aggregate(values []float64) models.Aggregate {
	if len(values) == 0 {
		return models.Aggregate{}
	}
	agg := models.Aggregate{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		if v < agg.Min {
			agg.Min = v
		}
		if v > agg.Max {
			agg.Max = v
		}
	}
	agg.Mean = sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - agg.Mean
		sumSq += d * d
	}
	agg.Std = math.Sqrt(sumSq / float64(len(values)))
	return agg
}
