package retention

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs daily at midnight.
const DefaultSchedule = "0 0 0 * * * *"

// Year bounds accepted in the seventh field.
const (
	minYear = 1970
	maxYear = 2099
)

var fieldParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a cron expression with fields
//
//	sec min hour day-of-month month day-of-week [year]
//
// The year field is optional. Descriptors such as "@daily" and "@every 1h"
// are accepted, and a leading "CRON_TZ=Zone" or "TZ=Zone" selects the zone.
// Day-of-week follows robfig/cron: 0-6 from Sunday, or names (MON, Fri).
func ParseSchedule(expr string) (cron.Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty cron expression")
	}

	var tz string
	if strings.HasPrefix(fields[0], "TZ=") || strings.HasPrefix(fields[0], "CRON_TZ=") {
		tz, fields = fields[0], fields[1:]
	}
	if len(fields) > 0 && strings.HasPrefix(fields[0], "@") {
		return fieldParser.Parse(strings.TrimSpace(tz + " " + strings.Join(fields, " ")))
	}

	var yearField string
	switch len(fields) {
	case 6:
	case 7:
		yearField, fields = fields[6], fields[:6]
	default:
		return nil, fmt.Errorf("expected 6 or 7 fields, found %d: %s", len(fields), expr)
	}

	inner, err := fieldParser.Parse(strings.TrimSpace(tz + " " + strings.Join(fields, " ")))
	if err != nil {
		return nil, err
	}
	if yearField == "" {
		return inner, nil
	}

	years, err := parseYears(yearField)
	if err != nil {
		return nil, err
	}
	if years == nil {
		return inner, nil
	}
	return &yearSchedule{inner: inner, years: years}, nil
}

// yearSchedule restricts inner to a set of years.
type yearSchedule struct {
	inner cron.Schedule
	years map[int]bool
}

// Next implements cron.Schedule. It returns the zero time once no allowed
// year remains.
func (s *yearSchedule) Next(t time.Time) time.Time {
	for {
		next := s.inner.Next(t)
		if next.IsZero() || s.years[next.Year()] {
			return next
		}

		y := s.nextYear(next.Year())
		if y == 0 {
			return time.Time{}
		}
		t = time.Date(y, time.January, 1, 0, 0, 0, 0, next.Location()).Add(-time.Second)
	}
}

func (s *yearSchedule) nextYear(after int) int {
	for y := after + 1; y <= maxYear; y++ {
		if s.years[y] {
			return y
		}
	}
	return 0
}

// parseYears parses a comma separated list of "*", "N", "N-M", each with an
// optional "/step". A nil set means every year.
func parseYears(field string) (map[int]bool, error) {
	if field == "*" || field == "?" {
		return nil, nil
	}

	years := make(map[int]bool)
	for _, part := range strings.Split(field, ",") {
		lo, hi, step, err := parseYearRange(part)
		if err != nil {
			return nil, fmt.Errorf("year field %q: %w", field, err)
		}
		for y := lo; y <= hi; y += step {
			years[y] = true
		}
	}
	return years, nil
}

func parseYearRange(part string) (lo, hi, step int, err error) {
	step = 1
	rng := part
	if i := strings.IndexByte(part, '/'); i >= 0 {
		rng = part[:i]
		if step, err = strconv.Atoi(part[i+1:]); err != nil || step <= 0 {
			return 0, 0, 0, fmt.Errorf("bad step in %q", part)
		}
	}

	switch {
	case rng == "*":
		lo, hi = minYear, maxYear
	case strings.Contains(rng, "-"):
		bounds := strings.SplitN(rng, "-", 2)
		if lo, err = strconv.Atoi(bounds[0]); err != nil {
			return 0, 0, 0, fmt.Errorf("bad year %q", bounds[0])
		}
		if hi, err = strconv.Atoi(bounds[1]); err != nil {
			return 0, 0, 0, fmt.Errorf("bad year %q", bounds[1])
		}
	default:
		if lo, err = strconv.Atoi(rng); err != nil {
			return 0, 0, 0, fmt.Errorf("bad year %q", rng)
		}
		hi = lo
		if step > 1 {
			hi = maxYear
		}
	}

	if lo < minYear || hi > maxYear || lo > hi {
		return 0, 0, 0, fmt.Errorf("year range %d-%d outside %d-%d", lo, hi, minYear, maxYear)
	}
	return lo, hi, step, nil
}
