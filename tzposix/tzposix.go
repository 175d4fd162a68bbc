// Package tzposix parses the POSIX TZ strings found in TZif footers and
// evaluates their transition rules for arbitrary years.
//
// The grammar is the one from Section 8.3 of the "Base Definitions"
// volume of POSIX:
//
//	std offset [dst [offset] [,start[/time],end[/time]]]
//
// extended per RFC8536 Section 3.3.1 with angle-bracketed designations
// and transition times beyond 24 hours.
//
// POSIX writes offsets with west of UTC positive. This package inverts
// the sign on parsing so that offsets are seconds east of UTC
// everywhere, matching the TZif data blocks.
package tzposix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ngrash/go-zoneinfo/internal/datemath"
	"github.com/ngrash/go-zoneinfo/internal/unixtime"
)

// DayForm selects how a Transition denotes its day of year.
type DayForm int

const (
	// DayFormJulian is the "Jn" form: n in [1, 365], counting February 28
	// as day 59 and March 1 as day 60 in every year. February 29 is never
	// selected.
	DayFormJulian DayForm = iota
	// DayFormZeroBased is the "n" form: n in [0, 365], counting February
	// 29 in leap years.
	DayFormZeroBased
	// DayFormMonthWeek is the "Mm.w.d" form: the w-th occurrence of
	// weekday d (0 = Sunday) in month m, where w = 5 means the last
	// occurrence.
	DayFormMonthWeek
)

// Transition selects the day of year and time of day at which a DST
// transition occurs.
type Transition struct {
	Form DayForm

	// Day is the day number of the DayFormJulian and DayFormZeroBased
	// forms.
	Day int

	// Month, Week and Weekday describe the DayFormMonthWeek form.
	Month, Week, Weekday int

	// TimeOfDay is the local time of the transition in seconds since
	// midnight. Defaults to 7200 (02:00:00). May be negative or exceed
	// 24 hours in version 3+ TZ strings.
	TimeOfDay int64
}

// YearToEpoch returns the occurrence of the transition in the given year
// as seconds since 1970-01-01 00:00:00 of the local wall clock. Callers
// convert to UTC by subtracting the offset in effect on their side of
// the transition.
func (t Transition) YearToEpoch(year int) int64 {
	switch t.Form {
	case DayFormMonthWeek:
		day := datemath.NthWeekdayOfMonth(year, t.Month, t.Week, t.Weekday)
		return unixtime.FromDateTime(year, t.Month, day, 0, 0, 0) + t.TimeOfDay
	case DayFormJulian:
		d := t.Day - 1
		if d >= 59 && datemath.IsLeapYear(year) {
			d++ // skip February 29
		}
		return unixtime.FromDateTime(year, 1, 1, 0, 0, 0) + int64(d)*86400 + t.TimeOfDay
	default:
		return unixtime.FromDateTime(year, 1, 1, 0, 0, 0) + int64(t.Day)*86400 + t.TimeOfDay
	}
}

// Rule is a parsed TZ string. A rule without DST has empty DstAbbr and
// nil Start and End; it denotes a single constant offset and never emits
// transitions.
type Rule struct {
	StdAbbr   string
	StdOffset int64 // seconds east of UTC
	DstAbbr   string
	DstOffset int64 // seconds east of UTC, valid when HasDST

	Start, End *Transition
}

// HasDST reports whether the rule alternates between standard and
// daylight saving time.
func (r *Rule) HasDST() bool { return r.Start != nil }

// DSTDiff returns the daylight saving in seconds. Usually 3600; negative
// savings exist.
func (r *Rule) DSTDiff() int64 { return r.DstOffset - r.StdOffset }

// TransitionsLocal returns the instants at which the year's DST period
// starts and ends, as local wall readings in seconds since the epoch.
// When the period spans the year boundary the returned start is greater
// than the returned end.
func (r *Rule) TransitionsLocal(year int) (start, end int64) {
	return r.Start.YearToEpoch(year), r.End.YearToEpoch(year)
}

// TransitionsUTC is TransitionsLocal projected to UTC. The rule's time
// of day is denominated in the offset current on each side of the
// transition: standard time before the start, daylight saving time
// before the end.
func (r *Rule) TransitionsUTC(year int) (start, end int64) {
	start, end = r.TransitionsLocal(year)
	return start - r.StdOffset, end - r.DstOffset
}

// An abbreviation is a run of at least three letters, or a run of
// letters, digits, '+' and '-' inside angle brackets.
var tzStrRe = regexp.MustCompile(
	`^(?P<std>[A-Za-z]{3,}|<[A-Za-z0-9+-]+>)` +
		`(?P<stdoff>[+-]?\d{1,2}(?::\d{2}(?::\d{2})?)?)?` +
		`(?:(?P<dst>[A-Za-z]{3,}|<[A-Za-z0-9+-]+>)` +
		`(?P<dstoff>[+-]?\d{1,2}(?::\d{2}(?::\d{2})?)?)?` +
		`)?$`)

// Parse parses a TZ string.
func Parse(s string) (*Rule, error) {
	abbrs, rules, hasRules := strings.Cut(s, ",")

	m := tzStrRe.FindStringSubmatch(abbrs)
	if m == nil {
		return nil, fmt.Errorf("invalid TZ string %q", s)
	}
	var (
		stdAbbr   = m[tzStrRe.SubexpIndex("std")]
		stdOffStr = m[tzStrRe.SubexpIndex("stdoff")]
		dstAbbr   = m[tzStrRe.SubexpIndex("dst")]
		dstOffStr = m[tzStrRe.SubexpIndex("dstoff")]
	)

	r := &Rule{StdAbbr: strings.Trim(stdAbbr, "<>")}
	if stdOffStr != "" {
		off, err := parseOffset(stdOffStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ string %q: %w", s, err)
		}
		r.StdOffset = off
	}

	if dstAbbr == "" {
		if hasRules {
			return nil, fmt.Errorf("invalid TZ string %q: transition rules without DST", s)
		}
		return r, nil
	}
	r.DstAbbr = strings.Trim(dstAbbr, "<>")
	// DST defaults to one hour ahead of standard time.
	r.DstOffset = r.StdOffset + 3600
	if dstOffStr != "" {
		off, err := parseOffset(dstOffStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ string %q: %w", s, err)
		}
		r.DstOffset = off
	}

	if !hasRules {
		return nil, fmt.Errorf("invalid TZ string %q: missing transition rules", s)
	}
	startStr, endStr, ok := strings.Cut(rules, ",")
	if !ok {
		return nil, fmt.Errorf("invalid TZ string %q: missing end rule", s)
	}
	start, err := parseTransition(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ string %q: %w", s, err)
	}
	end, err := parseTransition(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ string %q: %w", s, err)
	}
	r.Start, r.End = start, end
	return r, nil
}

var monthWeekRe = regexp.MustCompile(`^M(\d{1,2})\.(\d)\.(\d)$`)

func parseTransition(s string) (*Transition, error) {
	date, timeStr, hasTime := strings.Cut(s, "/")

	var t Transition
	switch {
	case strings.HasPrefix(date, "M"):
		m := monthWeekRe.FindStringSubmatch(date)
		if m == nil {
			return nil, fmt.Errorf("invalid transition date %q", s)
		}
		t.Form = DayFormMonthWeek
		t.Month, _ = strconv.Atoi(m[1])
		t.Week, _ = strconv.Atoi(m[2])
		t.Weekday, _ = strconv.Atoi(m[3])
		if t.Month < 1 || t.Month > 12 || t.Week < 1 || t.Week > 5 || t.Weekday > 6 {
			return nil, fmt.Errorf("invalid transition date %q", s)
		}
	case strings.HasPrefix(date, "J"):
		day, err := strconv.Atoi(date[1:])
		if err != nil || day < 1 || day > 365 {
			return nil, fmt.Errorf("invalid transition date %q", s)
		}
		t.Form = DayFormJulian
		t.Day = day
	default:
		day, err := strconv.Atoi(date)
		if err != nil || day < 0 || day > 365 {
			return nil, fmt.Errorf("invalid transition date %q", s)
		}
		t.Form = DayFormZeroBased
		t.Day = day
	}

	t.TimeOfDay = 2 * 3600
	if hasTime {
		tod, err := parseTransitionTime(timeStr)
		if err != nil {
			return nil, err
		}
		t.TimeOfDay = tod
	}
	return &t, nil
}

var transitionTimeRe = regexp.MustCompile(`^(?P<sign>[+-])?(?P<h>\d{1,3})(?::(?P<m>\d{2})(?::(?P<s>\d{2}))?)?$`)

// parseTransitionTime parses the time part of a transition rule. Hours
// range over [-167, 167] per the RFC8536 extension.
func parseTransitionTime(s string) (int64, error) {
	m := transitionTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid transition time %q", s)
	}
	h, min, sec := groupInt(transitionTimeRe, m, "h"), groupInt(transitionTimeRe, m, "m"), groupInt(transitionTimeRe, m, "s")
	if h > 167 {
		return 0, fmt.Errorf("invalid transition time %q: hours out of range", s)
	}
	total := int64(h)*3600 + int64(min)*60 + int64(sec)
	if m[transitionTimeRe.SubexpIndex("sign")] == "-" {
		total = -total
	}
	return total, nil
}

var offsetRe = regexp.MustCompile(`^(?P<sign>[+-])?(?P<h>\d{1,2})(?::(?P<m>\d{2})(?::(?P<s>\d{2}))?)?$`)

// parseOffset parses an offset following a designation. The POSIX sign
// convention is inverted: "EST5" is five hours west of UTC, so it parses
// to -18000.
func parseOffset(s string) (int64, error) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	h, min, sec := groupInt(offsetRe, m, "h"), groupInt(offsetRe, m, "m"), groupInt(offsetRe, m, "s")
	if h > 24 {
		return 0, fmt.Errorf("invalid offset %q: hours out of range", s)
	}
	total := int64(h)*3600 + int64(min)*60 + int64(sec)
	if m[offsetRe.SubexpIndex("sign")] != "-" {
		total = -total
	}
	return total, nil
}

func groupInt(re *regexp.Regexp, m []string, name string) int {
	// re constrains the group to digits; an absent group yields zero.
	v, _ := strconv.Atoi(m[re.SubexpIndex(name)])
	return v
}
