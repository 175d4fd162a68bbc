package zoneinfo

import (
	"bytes"
	"testing"
	"time"

	"github.com/ngrash/go-zoneinfo/tzif"
)

func encodeFixture(t *testing.T, f tzif.File) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func buildZone(t *testing.T, f tzif.File, key string) *Zone {
	t.Helper()
	z, err := FromReader(bytes.NewReader(encodeFixture(t, f)), key)
	if err != nil {
		t.Fatalf("building zone %q: %v", key, err)
	}
	return z
}

func v2Fixture(types []tzif.LocalTimeTypeRecord, desigs string, times []int64, idxs []uint8, tzstr string) tzif.File {
	b := tzif.DataBlock{
		TransitionTimes:      times,
		TransitionTypes:      idxs,
		LocalTimeTypes:       types,
		TimeZoneDesignations: []byte(desigs),
	}
	return tzif.File{Version: tzif.V2, Header: b.DeriveHeader(tzif.V2), Block: b, TZString: tzstr}
}

// civil builds a wall reading; the UTC location is a stand-in, the zone
// operations ignore it.
func civil(year, month, day, hour, min int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, 0, 0, time.UTC)
}

// chicagoFile covers the two transitions of 2020:
// 2020-03-08T08:00Z to CDT and 2020-11-01T07:00Z back to CST.
func chicagoFile() tzif.File {
	return v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: -21600, Dst: false, Idx: 0},
			{Utoff: -18000, Dst: true, Idx: 4},
		},
		"CST\x00CDT\x00",
		[]int64{1583654400, 1604214000},
		[]uint8{1, 0},
		"CST6CDT,M3.2.0,M11.1.0",
	)
}

// minskFile covers the 1992 DST period of Europe/Minsk:
// 1992-03-28T22:00Z to EEST and 1992-09-26T23:00Z back to EET.
func minskFile() tzif.File {
	return v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: 7200, Dst: false, Idx: 0},
			{Utoff: 10800, Dst: true, Idx: 4},
		},
		"EET\x00EEST\x00",
		[]int64{701820000, 717548400},
		[]uint8{1, 0},
		"EET-2EEST,M3.5.0,M10.5.0/3",
	)
}

// kiritimatiFile has the 1994-12-31T10:00Z jump across the date line
// that skipped December 31 on the local clock.
func kiritimatiFile() tzif.File {
	return v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: -36000, Dst: false, Idx: 0},
			{Utoff: 50400, Dst: false, Idx: 4},
		},
		"-10\x00+14\x00",
		[]int64{788868000},
		[]uint8{1},
		"<+14>-14",
	)
}

func utcFile() tzif.File {
	return v2Fixture(
		[]tzif.LocalTimeTypeRecord{{Utoff: 0, Dst: false, Idx: 0}},
		"UTC\x00",
		nil, nil,
		"UTC0",
	)
}

// est5edtFile stores a single old transition (2007-11-04T06:00Z) so that
// everything after 2007 is resolved by the footer rule alone.
func est5edtFile() tzif.File {
	return v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: -18000, Dst: false, Idx: 0},
			{Utoff: -14400, Dst: true, Idx: 4},
		},
		"EST\x00EDT\x00",
		[]int64{1194156000},
		[]uint8{0},
		"EST5EDT,M3.2.0,M11.1.0",
	)
}

func TestMinsk1992(t *testing.T) {
	z := buildZone(t, minskFile(), "Europe/Minsk")

	d := civil(1992, 3, 1, 0, 0)
	if got, want := z.UTCOffset(d, 0), 2*time.Hour; got != want {
		t.Errorf("UTCOffset(%v) = %v, want %v", d, got, want)
	}
	if got, want := z.TZName(d, 0), "EET"; got != want {
		t.Errorf("TZName(%v) = %q, want %q", d, got, want)
	}
	if got := z.DST(d, 0); got != 0 {
		t.Errorf("DST(%v) = %v, want 0", d, got)
	}

	d = d.AddDate(0, 0, 90) // 1992-05-30
	if d.Month() != time.May || d.Day() != 30 {
		t.Fatalf("expected 1992-05-30, got %v", d)
	}
	if got, want := z.UTCOffset(d, 0), 3*time.Hour; got != want {
		t.Errorf("UTCOffset(%v) = %v, want %v", d, got, want)
	}
	if got, want := z.TZName(d, 0), "EEST"; got != want {
		t.Errorf("TZName(%v) = %q, want %q", d, got, want)
	}
	if got, want := z.DST(d, 0), time.Hour; got != want {
		t.Errorf("DST(%v) = %v, want %v", d, got, want)
	}
}

func TestChicagoFallBack(t *testing.T) {
	z := buildZone(t, chicagoFile(), "America/Chicago")
	wall := civil(2020, 11, 1, 1, 0)

	off0 := z.UTCOffset(wall, 0)
	off1 := z.UTCOffset(wall, 1)
	if want := -5 * time.Hour; off0 != want {
		t.Errorf("UTCOffset(fold 0) = %v, want %v", off0, want)
	}
	if want := -6 * time.Hour; off1 != want {
		t.Errorf("UTCOffset(fold 1) = %v, want %v", off1, want)
	}
	if got, want := z.TZName(wall, 0), "CDT"; got != want {
		t.Errorf("TZName(fold 0) = %q, want %q", got, want)
	}
	if got, want := z.TZName(wall, 1), "CST"; got != want {
		t.Errorf("TZName(fold 1) = %q, want %q", got, want)
	}

	// Converting each interpretation to UTC lands an hour apart.
	if got, want := wall.Add(-off0), civil(2020, 11, 1, 6, 0); !got.Equal(want) {
		t.Errorf("fold 0 in UTC = %v, want %v", got, want)
	}
	if got, want := wall.Add(-off1), civil(2020, 11, 1, 7, 0); !got.Equal(want) {
		t.Errorf("fold 1 in UTC = %v, want %v", got, want)
	}
}

func TestChicagoSpringForwardGap(t *testing.T) {
	z := buildZone(t, chicagoFile(), "America/Chicago")
	wall := civil(2020, 3, 8, 2, 30) // skipped by the clocks

	if got, want := z.UTCOffset(wall, 0), -6*time.Hour; got != want {
		t.Errorf("UTCOffset(fold 0) = %v, want %v (pre-jump)", got, want)
	}
	if got, want := z.UTCOffset(wall, 1), -5*time.Hour; got != want {
		t.Errorf("UTCOffset(fold 1) = %v, want %v (post-jump)", got, want)
	}
}

func TestChicagoFromUTC(t *testing.T) {
	z := buildZone(t, chicagoFile(), "America/Chicago")

	tests := []struct {
		utc      time.Time
		wantWall time.Time
		wantFold int
	}{
		{civil(2020, 11, 1, 5, 30), civil(2020, 11, 1, 0, 30), 0},
		{civil(2020, 11, 1, 6, 0), civil(2020, 11, 1, 1, 0), 0},
		{civil(2020, 11, 1, 6, 59), civil(2020, 11, 1, 1, 59), 0},
		{civil(2020, 11, 1, 7, 0), civil(2020, 11, 1, 1, 0), 1},
		{civil(2020, 11, 1, 7, 59), civil(2020, 11, 1, 1, 59), 1},
		{civil(2020, 11, 1, 8, 0), civil(2020, 11, 1, 2, 0), 0},
		{civil(2020, 3, 8, 7, 30), civil(2020, 3, 8, 1, 30), 0},
		{civil(2020, 3, 8, 8, 0), civil(2020, 3, 8, 3, 0), 0},
		{civil(2020, 7, 4, 17, 0), civil(2020, 7, 4, 12, 0), 0},
		{civil(2019, 1, 15, 18, 0), civil(2019, 1, 15, 12, 0), 0},
	}
	for _, tt := range tests {
		gotWall, gotFold := z.FromUTC(tt.utc)
		if !gotWall.Equal(tt.wantWall) || gotFold != tt.wantFold {
			t.Errorf("FromUTC(%v) = (%v, %d), want (%v, %d)",
				tt.utc, gotWall, gotFold, tt.wantWall, tt.wantFold)
		}
	}
}

// Every wall reading that exists on the local clock must survive the
// round trip through UTC, fold included.
func TestFromUTCRoundTrip(t *testing.T) {
	z := buildZone(t, chicagoFile(), "America/Chicago")

	readings := []struct {
		wall time.Time
		fold int
	}{
		{civil(2020, 1, 15, 12, 0), 0},
		{civil(2020, 7, 4, 12, 0), 0},
		{civil(2020, 3, 8, 1, 59), 0},
		{civil(2020, 3, 8, 3, 0), 0},
		{civil(2020, 11, 1, 0, 59), 0},
		{civil(2020, 11, 1, 1, 0), 0},
		{civil(2020, 11, 1, 1, 0), 1},
		{civil(2020, 11, 1, 1, 59), 1},
		{civil(2020, 11, 1, 2, 0), 0},
	}
	for _, r := range readings {
		utc := r.wall.Add(-z.UTCOffset(r.wall, r.fold))
		gotWall, gotFold := z.FromUTC(utc)
		if !gotWall.Equal(r.wall) || gotFold != r.fold {
			t.Errorf("round trip of (%v, %d) via %v = (%v, %d)",
				r.wall, r.fold, utc, gotWall, gotFold)
		}
	}
}

func TestKiritimatiDaySkip(t *testing.T) {
	z := buildZone(t, kiritimatiFile(), "Pacific/Kiritimati")

	// December 31 1994 never happened on the local clock.
	wall := civil(1994, 12, 31, 12, 0)
	if got, want := z.UTCOffset(wall, 0), -10*time.Hour; got != want {
		t.Errorf("UTCOffset(fold 0) = %v, want %v (pre-jump)", got, want)
	}
	if got, want := z.UTCOffset(wall, 1), 14*time.Hour; got != want {
		t.Errorf("UTCOffset(fold 1) = %v, want %v (post-jump)", got, want)
	}

	// The instant of the jump reads midnight January 1 on the new side.
	gotWall, gotFold := z.FromUTC(civil(1994, 12, 31, 10, 0))
	if want := civil(1995, 1, 1, 0, 0); !gotWall.Equal(want) || gotFold != 0 {
		t.Errorf("FromUTC(jump) = (%v, %d), want (%v, 0)", gotWall, gotFold, want)
	}
	gotWall, _ = z.FromUTC(civil(1994, 12, 31, 9, 59))
	if want := civil(1994, 12, 30, 23, 59); !gotWall.Equal(want) {
		t.Errorf("FromUTC(before jump) = %v, want %v", gotWall, want)
	}
}

func TestUTCZone(t *testing.T) {
	z := buildZone(t, utcFile(), "Etc/UTC")

	for _, d := range []time.Time{
		civil(1950, 6, 1, 0, 0),
		civil(1970, 1, 1, 0, 0),
		civil(2020, 2, 29, 23, 59),
		civil(2100, 12, 31, 12, 0),
	} {
		for fold := 0; fold <= 1; fold++ {
			if got := z.UTCOffset(d, fold); got != 0 {
				t.Errorf("UTCOffset(%v, %d) = %v, want 0", d, fold, got)
			}
			if got := z.DST(d, fold); got != 0 {
				t.Errorf("DST(%v, %d) = %v, want 0", d, fold, got)
			}
			if got := z.TZName(d, fold); got != "UTC" {
				t.Errorf("TZName(%v, %d) = %q, want UTC", d, fold, got)
			}
		}
		wall, fold := z.FromUTC(d)
		if !wall.Equal(d) || fold != 0 {
			t.Errorf("FromUTC(%v) = (%v, %d), want identity", d, wall, fold)
		}
	}
}

// The 2050 transitions lie far past the stored table and must be
// resolved by the footer rule alone.
func TestTailRuleGapAndOverlap(t *testing.T) {
	z := buildZone(t, est5edtFile(), "EST5EDT")

	gap := civil(2050, 3, 13, 2, 30)
	if got, want := z.UTCOffset(gap, 0), -5*time.Hour; got != want {
		t.Errorf("gap UTCOffset(fold 0) = %v, want %v", got, want)
	}
	if got, want := z.UTCOffset(gap, 1), -4*time.Hour; got != want {
		t.Errorf("gap UTCOffset(fold 1) = %v, want %v", got, want)
	}
	if got, want := z.TZName(gap, 0), "EST"; got != want {
		t.Errorf("gap TZName(fold 0) = %q, want %q", got, want)
	}

	overlap := civil(2050, 11, 6, 1, 30)
	if got, want := z.UTCOffset(overlap, 0), -4*time.Hour; got != want {
		t.Errorf("overlap UTCOffset(fold 0) = %v, want %v", got, want)
	}
	if got, want := z.UTCOffset(overlap, 1), -5*time.Hour; got != want {
		t.Errorf("overlap UTCOffset(fold 1) = %v, want %v", got, want)
	}
	if got, want := z.DST(overlap, 0), time.Hour; got != want {
		t.Errorf("overlap DST(fold 0) = %v, want %v", got, want)
	}

	// UTC-side tail evaluation, fold included.
	offset, dst, name := z.LookupUTC(civil(2050, 7, 4, 12, 0))
	if offset != -4*time.Hour || dst != time.Hour || name != "EDT" {
		t.Errorf("LookupUTC(summer 2050) = (%v, %v, %q), want (-4h, 1h, EDT)", offset, dst, name)
	}
	wall, fold := z.FromUTC(civil(2050, 11, 6, 6, 30))
	if want := civil(2050, 11, 6, 1, 30); !wall.Equal(want) || fold != 1 {
		t.Errorf("FromUTC(in overlap) = (%v, %d), want (%v, 1)", wall, fold, want)
	}
	wall, fold = z.FromUTC(civil(2050, 11, 6, 5, 30))
	if want := civil(2050, 11, 6, 1, 30); !wall.Equal(want) || fold != 0 {
		t.Errorf("FromUTC(before overlap) = (%v, %d), want (%v, 0)", wall, fold, want)
	}
}

// The saving of a DST type is not stored in TZif. It is derived from the
// standard type next to its transitions; a type surrounded by DST types
// on every occurrence falls back to one hour.
func TestDeriveDSTOffsets(t *testing.T) {
	f := v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: 0, Dst: false, Idx: 0},
			{Utoff: 3600, Dst: true, Idx: 4},
			{Utoff: 7200, Dst: true, Idx: 6},
		},
		"STD\x00B\x00C\x00",
		[]int64{100, 200, 300, 400},
		[]uint8{1, 2, 1, 0},
		"",
	)
	z := buildZone(t, f, "test/derive")

	// B transitions into standard time; its saving is derived.
	if got := z.types[1].dstoff; got != 3600 {
		t.Errorf("types[1].dstoff = %d, want 3600", got)
	}
	// C only ever neighbours DST types: the single pass cannot resolve
	// it and the one-hour fallback applies, not its real saving.
	if got := z.types[2].dstoff; got != 3600 {
		t.Errorf("types[2].dstoff = %d, want fallback 3600", got)
	}

	for i, rec := range z.types {
		if rec.isdst != (rec.dstoff != 0) {
			t.Errorf("types[%d]: isdst = %v but dstoff = %d", i, rec.isdst, rec.dstoff)
		}
	}
}

// A DST type that only occurs as the first transition is never examined
// by the derivation pass and takes the fallback.
func TestDeriveDSTOffsets_FirstTransition(t *testing.T) {
	f := v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: 0, Dst: false, Idx: 0},
			{Utoff: 7200, Dst: true, Idx: 4},
		},
		"STD\x00DBL\x00",
		[]int64{100, 200},
		[]uint8{1, 0},
		"",
	)
	z := buildZone(t, f, "test/first")
	if got := z.types[1].dstoff; got != 3600 {
		t.Errorf("types[1].dstoff = %d, want fallback 3600", got)
	}
}

func TestTableInvariants(t *testing.T) {
	for _, tt := range []struct {
		key  string
		file tzif.File
	}{
		{"America/Chicago", chicagoFile()},
		{"Europe/Minsk", minskFile()},
		{"Pacific/Kiritimati", kiritimatiFile()},
		{"Etc/UTC", utcFile()},
	} {
		z := buildZone(t, tt.file, tt.key)
		for i := range z.transUTC {
			if i > 0 && z.transUTC[i] <= z.transUTC[i-1] {
				t.Errorf("%s: transUTC not strictly increasing at %d", tt.key, i)
			}
			if z.transWall[0][i] < z.transWall[1][i] {
				t.Errorf("%s: transWall[0][%d] < transWall[1][%d]", tt.key, i, i)
			}
		}
		for i, rec := range z.types {
			if rec.isdst != (rec.dstoff != 0) {
				t.Errorf("%s: types[%d] isdst/dstoff mismatch", tt.key, i)
			}
			if rec.utcoffDur < -26*time.Hour || rec.utcoffDur > 26*time.Hour {
				t.Errorf("%s: types[%d] offset %v out of bounds", tt.key, i, rec.utcoffDur)
			}
		}
	}
}

func TestAllDSTTypesBefore(t *testing.T) {
	f := v2Fixture(
		[]tzif.LocalTimeTypeRecord{
			{Utoff: 3600, Dst: true, Idx: 0},
			{Utoff: 7200, Dst: true, Idx: 5},
		},
		"ONE\x00TWO\x00",
		[]int64{100},
		[]uint8{1},
		"",
	)
	z := buildZone(t, f, "test/alldst")
	// No standard type exists; the first type stands in.
	if z.before != 0 {
		t.Errorf("before = %d, want 0", z.before)
	}
	if got := z.TZName(civil(1960, 1, 1, 0, 0), 0); got != "ONE" {
		t.Errorf("TZName before first transition = %q, want ONE", got)
	}
}

func TestMarshalBinaryRoundTrip(t *testing.T) {
	z := buildZone(t, chicagoFile(), "America/Chicago")

	data, err := z.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() failed: %v", err)
	}
	var restored Zone
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() failed: %v", err)
	}

	if !restored.Equal(z) {
		t.Error("restored zone not Equal to original")
	}
	if restored.Key() != "America/Chicago" {
		t.Errorf("restored key = %q", restored.Key())
	}
	for _, d := range []time.Time{
		civil(2020, 11, 1, 1, 30),
		civil(2020, 3, 8, 2, 30),
		civil(2035, 7, 1, 12, 0),
	} {
		for fold := 0; fold <= 1; fold++ {
			if restored.UTCOffset(d, fold) != z.UTCOffset(d, fold) ||
				restored.TZName(d, fold) != z.TZName(d, fold) {
				t.Errorf("restored zone disagrees at (%v, %d)", d, fold)
			}
		}
	}
}

func TestEqual(t *testing.T) {
	a := buildZone(t, chicagoFile(), "America/Chicago")
	b := buildZone(t, chicagoFile(), "America/Chicago")
	c := buildZone(t, chicagoFile(), "Other/Key")
	d := buildZone(t, utcFile(), "America/Chicago")

	if !a.Equal(b) {
		t.Error("zones from identical bytes and key should be Equal")
	}
	if a == b {
		t.Error("distinct constructions should not be identical")
	}
	if a.Equal(c) {
		t.Error("different keys should not be Equal")
	}
	if a.Equal(d) {
		t.Error("different bytes should not be Equal")
	}
	if a.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
}

func TestZoneMetadata(t *testing.T) {
	f := chicagoFile()
	f.Block.LeapSecondRecords = []tzif.LeapSecondRecord{{Occur: 78796800, Corr: 1}}
	f.Header = f.Block.DeriveHeader(tzif.V2)
	z := buildZone(t, f, "America/Chicago")

	if got := z.Version(); got != tzif.V2 {
		t.Errorf("Version() = %v, want V2", got)
	}
	leaps := z.LeapSeconds()
	if len(leaps) != 1 || leaps[0].Occur != 78796800 || leaps[0].Corr != 1 {
		t.Errorf("LeapSeconds() = %+v", leaps)
	}
	// Mutating the copy must not reach the zone.
	leaps[0].Corr = 99
	if z.LeapSeconds()[0].Corr != 1 {
		t.Error("LeapSeconds() exposed internal state")
	}
	if z.String() != "America/Chicago" {
		t.Errorf("String() = %q", z.String())
	}
}
