package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const (
	expiryJobName    = "booking_expiry"
	expiryJobTimeout = time.Minute
)

// Expirer cancels booking links whose date range has passed.
type Expirer interface {
	ExpirePending(ctx context.Context) (int64, error)
}

// RegisterExpiryJob runs the pending booking sweep every interval.
func RegisterExpiryJob(s *Service, expirer Expirer, interval time.Duration) error {
	return registerExpiryJob(s, expirer, interval)
}

func registerExpiryJob(s *Service, expirer Expirer, interval time.Duration, opts ...gocron.JobOption) error {
	if expirer == nil {
		return fmt.Errorf("expiry job requires a booking service")
	}

	jobLogger := log.With().
		Str("component", "booking_expiry_job").
		Str("job_name", expiryJobName).
		Logger()

	_, err := s.AddIntervalJob(expiryJobName, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		n, err := expirer.ExpirePending(ctx)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to expire pending bookings")
			return
		}
		if n > 0 {
			jobLogger.Info().Int64("expired", n).Msg("Expired pending bookings")
		}
	}, append([]gocron.JobOption{gocron.WithSingletonMode(gocron.LimitModeReschedule)}, opts...)...)
	return err
}
