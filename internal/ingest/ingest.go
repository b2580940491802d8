package ingest

import (
	"context"
	"log/slog"

	"icuwatch/internal/model"
)

type Sink interface {
	Ingest(obs model.Observation) error
}

func SendNonBlocking(ctx context.Context, out chan<- model.Observation, obs model.Observation, logger *slog.Logger) bool {
	select {
	case out <- obs:
		return true
	case <-ctx.Done():
		return false
	default:
		if logger != nil {
			logger.Warn("observation channel full, dropping", "patient", obs.PatientID, "feature", obs.Feature)
		}
		return false
	}
}

// StartRouter drains the observation channel into the registry. Rejected
// observations (unknown patient or feature) are logged and dropped.
func StartRouter(ctx context.Context, in <-chan model.Observation, sink Sink, logger *slog.Logger) {
	go func() {
		for {
			select {
			case obs := <-in:
				if err := sink.Ingest(obs); err != nil {
					if logger != nil {
						logger.Warn("observation rejected", "patient", obs.PatientID, "feature", obs.Feature, "err", err)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
