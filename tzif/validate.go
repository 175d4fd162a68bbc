package tzif

import (
	"bytes"
	"errors"
	"fmt"
)

// Utoff bounds from RFC8536 Section 3.2: more than -25 hours and less
// than 26 hours.
const (
	minUtoff = -89999
	maxUtoff = 93599
)

// Validate checks the structural invariants of a decoded file: header
// counts match the block, indices stay in range, offsets are within the
// permitted bounds and transition times ascend strictly.
func Validate(f File) error {
	var (
		errs   []error
		data   = f.Block
		header = f.Header
	)

	// Isutcnt
	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		errs = append(errs, fmt.Errorf("invalid isutcnt (%d): must be 0 or equal to typecnt (%d)", header.Isutcnt, header.Typecnt))
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		errs = append(errs, fmt.Errorf("invalid isutcnt: header = %d, data = %d", header.Isutcnt, len(data.UTLocalIndicators)))
	}

	// Isstdcnt
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		errs = append(errs, fmt.Errorf("invalid isstdcnt (%d): must be 0 or equal to typecnt (%d)", header.Isstdcnt, header.Typecnt))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		errs = append(errs, fmt.Errorf("invalid isstdcnt: header = %d, data = %d", header.Isstdcnt, len(data.StandardWallIndicators)))
	}

	// Leapcnt
	if len(data.LeapSecondRecords) != int(header.Leapcnt) {
		errs = append(errs, fmt.Errorf("invalid leapcnt: header = %d, data = %d", header.Leapcnt, len(data.LeapSecondRecords)))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		errs = append(errs, fmt.Errorf("invalid timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		errs = append(errs, fmt.Errorf("inconsistent transitions: transition times = %d, transition types = %d", times, types))
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			errs = append(errs, fmt.Errorf("transition times not strictly ascending at index %d: %d after %d", i, data.TransitionTimes[i], data.TransitionTimes[i-1]))
			break
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		errs = append(errs, fmt.Errorf("invalid typecnt: must not be zero"))
	}
	if len(data.LocalTimeTypes) != int(header.Typecnt) {
		errs = append(errs, fmt.Errorf("invalid typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypes)))
	}
	for i, idx := range data.TransitionTypes {
		if int(idx) >= len(data.LocalTimeTypes) {
			errs = append(errs, fmt.Errorf("transition %d references type %d, typecnt = %d", i, idx, len(data.LocalTimeTypes)))
		}
	}
	for i, t := range data.LocalTimeTypes {
		if t.Utoff < minUtoff || t.Utoff > maxUtoff {
			errs = append(errs, fmt.Errorf("type %d: utoff %d outside [%d, %d]", i, t.Utoff, minUtoff, maxUtoff))
		}
		if int(t.Idx) >= len(data.TimeZoneDesignations) {
			errs = append(errs, fmt.Errorf("type %d: designation index %d, charcnt = %d", i, t.Idx, len(data.TimeZoneDesignations)))
		} else if bytes.IndexByte(data.TimeZoneDesignations[t.Idx:], 0) < 0 {
			errs = append(errs, fmt.Errorf("type %d: unterminated designation at index %d", i, t.Idx))
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		errs = append(errs, fmt.Errorf("invalid charcnt: must not be zero"))
	}
	if len(data.TimeZoneDesignations) != int(header.Charcnt) {
		errs = append(errs, fmt.Errorf("invalid charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignations)))
	}
	if n := len(data.TimeZoneDesignations); n > 0 && data.TimeZoneDesignations[n-1] != 0 {
		errs = append(errs, fmt.Errorf("invalid time zone designations: missing null terminator"))
	}

	return errors.Join(errs...)
}
