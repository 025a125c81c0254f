package forecast

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/canopywatch/canopy-engine/pkg/models"
)

// ForecastBatch runs the forecaster over every record in parallel,
// bounded by workers (defaulting to the CPU count). Records are
// independent, so a failure is captured into that record's result slot
// with Success=false and siblings keep going; the only whole-batch
// rejections are an invalid horizon and context cancellation.
func (f *Forecaster) ForecastBatch(ctx context.Context, records []models.Record, yearsAhead, workers int) ([]models.RecordForecast, error) {
	if err := ValidateYearsAhead(yearsAhead); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]models.RecordForecast, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = f.forecastRecord(rec, i, yearsAhead)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *Forecaster) forecastRecord(rec models.Record, rowID, yearsAhead int) models.RecordForecast {
	series, err := SeriesFromRecord(rec)
	if err != nil {
		return models.RecordForecast{RowID: rowID, Success: false, Error: err.Error()}
	}
	result, err := f.Forecast(series, yearsAhead)
	if err != nil {
		return models.RecordForecast{RowID: rowID, Success: false, Error: err.Error()}
	}
	result.RowID = rowID
	return result
}
