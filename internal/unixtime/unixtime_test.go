package unixtime

import (
	"testing"
	"time"
)

func TestFromDateTime(t *testing.T) {
	tests := []struct {
		year, month, day, hour, min, sec int
		want                             int64
	}{
		{1970, 1, 1, 0, 0, 0, 0},
		{1969, 12, 31, 23, 59, 59, -1},
		{2020, 1, 1, 0, 0, 0, 1577836800},
		{2020, 3, 8, 8, 0, 0, 1583654400},
		{2020, 11, 1, 7, 0, 0, 1604214000},
		{1901, 12, 13, 20, 45, 52, -2147483648},
		{2038, 1, 19, 3, 14, 7, 2147483647},
	}
	for _, tt := range tests {
		got := FromDateTime(tt.year, tt.month, tt.day, tt.hour, tt.min, tt.sec)
		if got != tt.want {
			t.Errorf("FromDateTime(%d, %d, %d, %d, %d, %d) = %d, want %d",
				tt.year, tt.month, tt.day, tt.hour, tt.min, tt.sec, got, tt.want)
		}
	}
}

func TestFromTime_IgnoresLocation(t *testing.T) {
	loc := time.FixedZone("test", 3600)
	ts := FromTime(time.Date(2020, 1, 1, 0, 0, 0, 500, loc))
	if ts != 1577836800 {
		t.Errorf("FromTime() = %d, want 1577836800", ts)
	}
}
