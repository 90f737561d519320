// Package google implements the calendar event source against the Google
// Calendar API.
package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tsink/internal/calendar"
	"tsink/internal/core"

	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"
)

const pageSize = 250

// Scope grants read-only event access.
const Scope = gcal.CalendarEventsReadonlyScope

type Client struct {
	svc *gcal.Service
}

var _ calendar.Source = (*Client)(nil)

// New builds a client on top of an authenticated HTTP client carrying Scope.
func New(ctx context.Context, hc *http.Client) (*Client, error) {
	svc, err := gcal.NewService(ctx, goption.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Events lists the calendar's events between from and to, following the
// server-side continuation token until exhausted. Recurring events arrive
// expanded into single instances, ordered by start time.
func (c *Client) Events(ctx context.Context, calendarID string, from, to time.Time) ([]core.CalendarEvent, error) {
	var (
		out       []core.CalendarEvent
		pageToken string
	)
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		for _, item := range resp.Items {
			ev, err := mapEvent(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

// mapEvent converts one API resource. An event whose start carries only a
// date, no timestamp, is all-day.
func mapEvent(item *gcal.Event) (core.CalendarEvent, error) {
	allDay := item.Start == nil || item.Start.DateTime == ""
	start, err := eventTime(item.Start, allDay)
	if err != nil {
		return core.CalendarEvent{}, fmt.Errorf("event %s start: %w", item.Id, err)
	}
	end, err := eventTime(item.End, allDay)
	if err != nil {
		return core.CalendarEvent{}, fmt.Errorf("event %s end: %w", item.Id, err)
	}
	summary := item.Summary
	if summary == "" {
		summary = "(No title)"
	}
	return core.CalendarEvent{
		ID:      item.Id,
		UID:     item.ICalUID,
		Summary: summary,
		Start:   start,
		End:     end,
		AllDay:  allDay,
	}, nil
}

func eventTime(dt *gcal.EventDateTime, allDay bool) (time.Time, error) {
	if dt == nil {
		return time.Time{}, nil
	}
	if allDay {
		return time.ParseInLocation(core.DayFormat, dt.Date, time.Local)
	}
	return time.Parse(time.RFC3339, dt.DateTime)
}
