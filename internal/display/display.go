// Package display decides what number the sign shows over time.
package display

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"go.tigermatt.uk/sign"
)

const (
	SecondsPerYear = 365 * 86400

	TestPatternCount = 888888
)

// Sign is the part of sign.Controller the display modes drive.
type Sign interface {
	Cursor() (int, bool)
	SetCount(n int) error
	Ping() error
	Done() <-chan struct{}
}

// WaitForHome pings the sign and polls until it reports the cursor at
// home. It returns false if ctx ends or the controller stops first.
func WaitForHome(ctx context.Context, s Sign, poll time.Duration) (bool, error) {
	log := zerolog.Ctx(ctx)

	log.Info().Msg("waiting for cursor sync")
	if err := s.Ping(); err != nil {
		return false, err
	}

	for {
		cur, ok := s.Cursor()
		if ok && cur == 0 {
			return true, nil
		}
		ev := log.Debug()
		if ok {
			ev = ev.Int("cursor", cur)
		}
		ev.Msg("cursor not home yet")

		if !pause(ctx, s, poll) {
			return false, nil
		}
	}
}

// TestPattern lights every segment, then clears the sign, holding each
// for hold.
func TestPattern(ctx context.Context, s Sign, hold time.Duration) (bool, error) {
	zerolog.Ctx(ctx).Info().Msg("running test pattern")

	for _, n := range []int{TestPatternCount, 0} {
		if err := set(ctx, s, n); err != nil {
			return false, err
		}
		if !pause(ctx, s, hold) {
			return false, nil
		}
	}
	return true, nil
}

// Fixed keeps n on the sign, reasserting it every interval.
func Fixed(ctx context.Context, s Sign, n int, interval time.Duration) error {
	zerolog.Ctx(ctx).Info().Int("count", n).Msg("running fixed mode")

	for {
		if err := set(ctx, s, n); err != nil {
			return err
		}
		if !pause(ctx, s, interval) {
			return nil
		}
	}
}

// Target counts up through the year so that the sign reaches annual at
// the end of it.
func Target(ctx context.Context, s Sign, annual int, interval time.Duration, now func() time.Time) error {
	zerolog.Ctx(ctx).Info().Int("target", annual).Msg("running target mode")

	for {
		if err := set(ctx, s, CountAt(now(), annual)); err != nil {
			return err
		}
		if !pause(ctx, s, interval) {
			return nil
		}
	}
}

// CountAt is how far along a linear ramp from 0 to annual the year is at t.
func CountAt(t time.Time, annual int) int {
	return int(SecondsIntoYear(t) * float64(annual) / SecondsPerYear)
}

// SecondsIntoYear is the time since midnight on January 1 of t's year,
// in t's location.
func SecondsIntoYear(t time.Time) float64 {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return t.Sub(start).Seconds()
}

// set tolerates the cursor being away from home; the controller steers it
// back and the next attempt goes through.
func set(ctx context.Context, s Sign, n int) error {
	err := s.SetCount(n)
	if errors.Is(err, sign.ErrCursorNotHome) {
		zerolog.Ctx(ctx).Debug().Int("count", n).Msg("count deferred until cursor is home")
		return nil
	}
	return err
}

// pause waits for d and reports whether to carry on.
func pause(ctx context.Context, s Sign, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.Done():
		return false
	case <-t.C:
		return true
	}
}
