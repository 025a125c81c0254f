// Package recommend turns batch statistics into a prioritized list of
// operator-facing action statements via fixed percentage thresholds.
// Recommendations are derived fresh on every request and never persisted.
package recommend

import (
	"fmt"
	"strings"

	"github.com/canopywatch/canopy-engine/pkg/models"
)

const (
	criticalSharePct  = 20
	poorSharePct      = 30
	healthySharePct   = 60
	lowConfidenceMean = 0.7
	trendDelta        = 0.05
)

// FromClassification maps classification batch statistics to
// recommendations. The first entry is always the distribution tier;
// a low-confidence warning is appended when mean confidence is below 0.7.
func FromClassification(s models.ClassificationStatistics) []string {
	if s.TotalRows == 0 {
		return []string{"No predictions available for recommendations"}
	}

	recs := []string{distributionTier(s.ClassDistribution, s.TotalRows)}
	if s.AverageConfidence < lowConfidenceMean {
		recs = append(recs, "Low prediction confidence - consider additional data collection")
	}
	return recs
}

// FromForecast maps forecast batch statistics to recommendations. The
// distribution tier leads; multi-year horizons additionally get per-year
// urgent/warning lines, a global trend statement, a strategy statement
// keyed off the overall mean, and a trailing coverage statement.
func FromForecast(s models.ForecastStatistics) []string {
	total := 0
	for _, n := range s.StatusDistribution {
		total += n
	}
	if total == 0 {
		return []string{"No predictions available for recommendations"}
	}

	recs := []string{distributionTier(s.StatusDistribution, total)}
	if len(s.Years) <= 1 {
		return recs
	}

	for _, year := range s.PerYear {
		yearTotal := 0
		for _, n := range year.StatusDistribution {
			yearTotal += n
		}
		if yearTotal == 0 {
			continue
		}
		criticalPct := share(year.StatusDistribution[string(models.StatusCritical)], yearTotal)
		poorPct := share(year.StatusDistribution[string(models.StatusPoor)], yearTotal)
		if criticalPct > criticalSharePct {
			recs = append(recs, fmt.Sprintf("URGENT %d: over %d%% of areas forecast critical - plan immediate intervention", year.Year, criticalSharePct))
		} else if poorPct > poorSharePct {
			recs = append(recs, fmt.Sprintf("WARNING %d: over %d%% of areas forecast poor - schedule enhanced management", year.Year, poorSharePct))
		}
	}

	first, last := s.PerYear[0], s.PerYear[len(s.PerYear)-1]
	delta := last.Mean - first.Mean
	switch {
	case delta > trendDelta:
		recs = append(recs, fmt.Sprintf("Vegetation trend %d-%d: improving - current trajectory is positive", first.Year, last.Year))
	case delta < -trendDelta:
		recs = append(recs, fmt.Sprintf("Vegetation trend %d-%d: declining - investigate stress drivers", first.Year, last.Year))
	default:
		recs = append(recs, fmt.Sprintf("Vegetation trend %d-%d: stable", first.Year, last.Year))
	}

	switch {
	case s.Overall.Mean < 0.2:
		recs = append(recs, "Strategy: large-scale intervention required - overall vegetation index is critically low")
	case s.Overall.Mean > 0.4:
		recs = append(recs, "Strategy: maintain current practices - overall vegetation index is healthy")
	default:
		recs = append(recs, "Strategy: targeted interventions recommended in the weakest zones")
	}

	recs = append(recs, fmt.Sprintf("Forecast covers years %s", joinYears(s.Years)))
	return recs
}

// distributionTier applies the shared 20/30/60 threshold ladder over a
// label distribution: urgent, then warning, then positive, else mixed.
func distributionTier(distribution map[string]int, total int) string {
	criticalPct := share(distribution[string(models.StatusCritical)], total)
	poorPct := share(distribution[string(models.StatusPoor)], total)
	healthyPct := share(distribution[string(models.StatusGood)]+distribution[string(models.StatusExcellent)], total)

	switch {
	case criticalPct > criticalSharePct:
		return "URGENT: Over 20% critical areas - immediate intervention required"
	case poorPct > poorSharePct:
		return "WARNING: Over 30% poor health areas - enhanced management needed"
	case healthyPct > healthySharePct:
		return "GOOD: Majority of areas in good health - maintain current practices"
	default:
		return "MIXED: Variable health conditions - differentiated management recommended"
	}
}

func share(count, total int) float64 {
	return float64(count) / float64(total) * 100
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
