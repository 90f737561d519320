// Package calendar defines the read-only event source consumed by the
// aggregation engine.
package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tsink/internal/core"
)

// Source lists events for a calendar within a time range.
type Source interface {
	Events(ctx context.Context, calendarID string, from, to time.Time) ([]core.CalendarEvent, error)
}

// MonthBounds returns the first instant of the month holding t and the last
// instant before the next month, in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to
}

// DayBounds returns the first and last instant of the day holding t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)
	return from, to
}

// MonthEvents fetches each requested month concurrently and returns the
// month-key to event-list map the aggregation engine takes as input.
func MonthEvents(ctx context.Context, src Source, calendarID string, months []time.Time) (map[string][]core.CalendarEvent, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]core.CalendarEvent, len(months))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, month := range months {
		month := month
		g.Go(func() error {
			from, to := MonthBounds(month)
			events, err := src.Events(ctx, calendarID, from, to)
			if err != nil {
				return err
			}
			mu.Lock()
			out[core.MonthKey(month)] = events
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Static is a fixed in-memory event source for tests and the offline
// backend.
type Static struct {
	Items []core.CalendarEvent
}

func (s Static) Events(_ context.Context, _ string, from, to time.Time) ([]core.CalendarEvent, error) {
	var out []core.CalendarEvent
	for _, ev := range s.Items {
		if ev.Start.Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
