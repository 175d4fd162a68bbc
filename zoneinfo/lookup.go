package zoneinfo

import "sort"

// bisectRight returns the smallest index whose element is greater than
// ts, i.e. the insertion point after any run of elements equal to ts.
func bisectRight(a []int64, ts int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] > ts })
}

// lookupLocal returns the type in effect at the wall reading ts (seconds
// since the epoch of the local clock) under the given fold. year is the
// civil year of the reading, consulted only past the last transition.
func (z *Zone) lookupLocal(ts int64, year, fold int) *typeRecord {
	wall := z.transWall[fold]
	n := len(wall)
	switch {
	case n == 0 || ts < wall[0]:
		return &z.types[z.before]
	case ts > wall[n-1]:
		return z.tailLocal(ts, year, fold)
	default:
		// The found transition is the one occurring after ts; its
		// predecessor governs the reading.
		return &z.types[z.transType[bisectRight(wall, ts)-1]]
	}
}

// lookupUTC returns the type in effect at the UTC instant ts.
func (z *Zone) lookupUTC(ts int64, year int) *typeRecord {
	n := len(z.transUTC)
	switch {
	case n == 0 || ts < z.transUTC[0]:
		return &z.types[z.before]
	case ts > z.transUTC[n-1]:
		rec, _ := z.tailFromUTC(ts, year)
		return rec
	default:
		return &z.types[z.transType[bisectRight(z.transUTC, ts)-1]]
	}
}

// lookupFromUTC resolves the UTC instant ts to its type and the fold
// that disambiguates the resulting wall reading: fold is 1 when the
// reading falls into the replayed part of an overlap, i.e. when the
// offset shed at the preceding transition has not yet elapsed.
func (z *Zone) lookupFromUTC(ts int64, year int) (*typeRecord, int) {
	n := len(z.transUTC)
	if n == 0 || ts > z.transUTC[n-1] {
		return z.tailFromUTC(ts, year)
	}
	if ts < z.transUTC[0] {
		return &z.types[z.before], 0
	}

	idx := bisectRight(z.transUTC, ts)
	prev := &z.types[z.before]
	if idx >= 2 {
		prev = &z.types[z.transType[idx-2]]
	}
	cur := &z.types[z.transType[idx-1]]

	fold := 0
	if shift := prev.utcoff - cur.utcoff; shift > ts-z.transUTC[idx-1] {
		fold = 1
	}
	return cur, fold
}

// tailLocal evaluates the footer rule for a wall reading past the last
// stored transition.
func (z *Zone) tailLocal(ts int64, year, fold int) *typeRecord {
	if z.tail == nil {
		return &z.types[z.tailStd]
	}
	start, end := z.tail.TransitionsLocal(year)
	diff := z.tail.DSTDiff()

	// With fold 0 the period denominated in the larger offset starts at
	// the end of the gap and ends at the end of the overlap; with fold 1
	// it runs from the start of the gap to the beginning of the overlap.
	// Which DST boundary that moves depends on the sign of the saving.
	if (fold == 1) == (diff >= 0) {
		end -= diff
	} else {
		start += diff
	}

	if inDSTInterval(ts, start, end) {
		return &z.types[z.tailDst]
	}
	return &z.types[z.tailStd]
}

// tailFromUTC evaluates the footer rule for a UTC instant past the last
// stored transition, additionally reporting the fold of the projected
// wall reading.
func (z *Zone) tailFromUTC(ts int64, year int) (*typeRecord, int) {
	if z.tail == nil {
		return &z.types[z.tailStd], 0
	}
	start, end := z.tail.TransitionsUTC(year)
	diff := z.tail.DSTDiff()

	rec := &z.types[z.tailStd]
	if inDSTInterval(ts, start, end) {
		rec = &z.types[z.tailDst]
	}

	// The ambiguous window trails the end of DST for a positive saving
	// and the start for a negative one; it is one saving wide.
	ambig := end
	width := diff
	if diff < 0 {
		ambig = start
		width = -diff
	}
	fold := 0
	if ambig <= ts && ts < ambig+width {
		fold = 1
	}
	return rec, fold
}

// inDSTInterval reports whether ts falls into the DST period delimited
// by start and end. A start past the end means the period wraps the
// year boundary (southern hemisphere), inverting the test.
func inDSTInterval(ts, start, end int64) bool {
	if start < end {
		return start <= ts && ts < end
	}
	return !(end <= ts && ts < start)
}
