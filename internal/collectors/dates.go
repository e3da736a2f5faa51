package collectors

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

// recencyWindow is the fixed policy split for search collection: the
// source only shows relative dates ("1일전") for articles newer than five
// weeks, so those days must be scraped one at a time with the search date
// standing in for the publication date. Older listings carry absolute
// dates and can be fetched in one range query.
const recencyWindow = 5 * 7 * 24 * time.Hour

// apiDateLayout matches the RFC-822 style pubDate of the Open API,
// e.g. "Wed, 20 Mar 2024 14:30:00 +0900".
const apiDateLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

var absoluteDatePattern = regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`)

// parseAPIDate converts an Open API pubDate into a KST timestamp.
func parseAPIDate(raw string) (time.Time, error) {
	t, err := time.Parse(apiDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable pubDate %q: %w", raw, err)
	}
	return t.In(models.KST), nil
}

// extractAbsoluteDate pulls a YYYY.MM.DD date out of free text, zero-padding
// single-digit fields. Returns "" when no date is present.
func extractAbsoluteDate(text string) string {
	match := absoluteDatePattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	var year, month, day int
	fmt.Sscanf(match[1], "%d", &year)
	fmt.Sscanf(match[2], "%d", &month)
	fmt.Sscanf(match[3], "%d", &day)
	return fmt.Sprintf("%04d.%02d.%02d", year, month, day)
}

// parseAbsoluteDate converts a YYYY.MM.DD string to a KST midnight timestamp.
func parseAbsoluteDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation("2006.01.02", date, models.KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q: %w", date, err)
	}
	return t, nil
}

// searchPlan splits a requested date range at the recency threshold.
type searchPlan struct {
	// DailyDates are visited one search request per day, newest first.
	DailyDates []time.Time
	// RangeStart/RangeEnd cover the older side in a single absolute-date
	// listing query; both zero when the whole range is recent.
	RangeStart time.Time
	RangeEnd   time.Time
}

// HasRange reports whether an absolute-date listing pass is needed.
func (p searchPlan) HasRange() bool {
	return !p.RangeStart.IsZero()
}

// planSearchRange decides how [start, end] is visited relative to now.
// Days after the threshold are paged daily in reverse order; days at or
// before it go into one range query. The split is exact: no day appears
// on both sides and none is skipped.
func planSearchRange(now, start, end time.Time) searchPlan {
	day := func(t time.Time) time.Time {
		t = t.In(models.KST)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, models.KST)
	}

	startDay := day(start)
	endDay := day(end)
	threshold := day(now.Add(-recencyWindow))

	var plan searchPlan

	dailyFrom := startDay
	if !dailyFrom.After(threshold) {
		dailyFrom = threshold.AddDate(0, 0, 1)
		plan.RangeStart = startDay
		plan.RangeEnd = endDay
		if plan.RangeEnd.After(threshold) {
			plan.RangeEnd = threshold
		}
	}

	for d := endDay; !d.Before(dailyFrom); d = d.AddDate(0, 0, -1) {
		plan.DailyDates = append(plan.DailyDates, d)
	}

	return plan
}
