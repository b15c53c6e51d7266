package signal

import (
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"

	"github.com/agrokarfi/agrokarfi/internal/earthengine"
	"github.com/agrokarfi/agrokarfi/internal/provider/resilience"
)

// FetchFunc is one tier's fetch for a signal. Returning an error advances
// the resolver to the next tier; a returned value is accepted as-is, even
// if numerically extreme.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resolved is a fully resolved signal value tagged with the tier that
// produced it. Resolution is total: there is always a value.
type Resolved[T any] struct {
	Value  T
	Source Source
}

// Resolve runs the fallback tiers for one signal in order: primary,
// secondary (may be nil for signals without a secondary provider), then the
// static default. It never returns an error. A context past its deadline
// skips remaining remote tiers and falls through to the default.
func Resolve[T any](ctx context.Context, logger zerolog.Logger, name string, primary, secondary FetchFunc[T], def T) Resolved[T] {
	tiers := []struct {
		source Source
		fetch  FetchFunc[T]
	}{
		{SourcePrimary, primary},
		{SourceSecondary, secondary},
	}

	for _, tier := range tiers {
		if tier.fetch == nil {
			continue
		}
		if ctx.Err() != nil {
			logger.Warn().
				Str("signal", name).
				Str("tier", string(tier.source)).
				Msg("request deadline reached, skipping tier")
			break
		}

		value, err := tier.fetch(ctx)
		if err == nil {
			logger.Info().
				Str("signal", name).
				Str("source", string(tier.source)).
				Interface("value", value).
				Msg("signal resolved")
			return Resolved[T]{Value: value, Source: tier.source}
		}

		// Expected degradations log quietly; anything else is likely a
		// programming error and must not be silently swallowed.
		if isExpectedFailure(err) {
			logger.Warn().
				Str("signal", name).
				Str("tier", string(tier.source)).
				Err(err).
				Msg("signal tier unavailable, advancing")
		} else {
			logger.Error().
				Str("signal", name).
				Str("tier", string(tier.source)).
				Err(err).
				Msg("unexpected signal fetch failure, advancing")
		}
	}

	logger.Info().
		Str("signal", name).
		Str("source", string(SourceDefault)).
		Interface("value", def).
		Msg("signal resolved from default")

	return Resolved[T]{Value: def, Source: SourceDefault}
}

// isExpectedFailure reports whether err is one of the narrow failure
// categories a remote tier is allowed to degrade on: empty/missing data,
// timeouts, cancellation, open circuits, and transport errors.
func isExpectedFailure(err error) bool {
	if errors.Is(err, ErrUnavailable) ||
		errors.Is(err, earthengine.ErrNoData) ||
		errors.Is(err, resilience.ErrCircuitOpen) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	var serverErr *resilience.ServerError
	if errors.As(err, &serverErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
