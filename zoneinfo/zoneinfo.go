// Package zoneinfo materialises IANA time zones from compiled TZif data
// and answers offset, daylight saving and designation queries with gap
// and overlap disambiguation.
//
// Wall readings are inherently ambiguous around transitions: a backward
// jump makes some readings occur twice, a forward jump makes some never
// occur. The fold argument of the wall-indexed operations selects which
// side of the transition interprets the reading: 0 applies the offset
// from before the jump, 1 the offset from after it.
//
// Zones are immutable after construction and safe for concurrent use.
package zoneinfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/ngrash/go-zoneinfo/internal/unixtime"
	"github.com/ngrash/go-zoneinfo/tzif"
	"github.com/ngrash/go-zoneinfo/tzposix"
)

var (
	// ErrNoSuchZone reports that no TZif data exists for a key, neither
	// on the search path nor via the LoadTZData hook.
	ErrNoSuchZone = errors.New("no such time zone")

	// ErrInvalidKey reports a key that is not a normalized relative
	// path and could escape the search path.
	ErrInvalidKey = errors.New("invalid time zone key")
)

// typeRecord is one local time type with its derived daylight saving.
// The durations duplicate the second counts so that lookups hand them
// out without converting.
type typeRecord struct {
	utcoff int64 // seconds east of UTC
	dstoff int64 // derived saving, zero for standard time types
	isdst  bool
	name   string

	utcoffDur time.Duration
	dstoffDur time.Duration
}

func newTypeRecord(utcoff, dstoff int64, isdst bool, name string) typeRecord {
	return typeRecord{
		utcoff:    utcoff,
		dstoff:    dstoff,
		isdst:     isdst,
		name:      name,
		utcoffDur: time.Duration(utcoff) * time.Second,
		dstoffDur: time.Duration(dstoff) * time.Second,
	}
}

// Zone is a single IANA time zone backed by a decoded TZif file.
type Zone struct {
	key string
	raw []byte

	version tzif.Version
	leaps   []tzif.LeapSecondRecord

	// Transition tables. transUTC holds the transition instants in UTC,
	// transWall the same instants projected into wall readings, one
	// array per fold. transType indexes types per transition.
	transUTC  []int64
	transWall [2][]int64
	transType []uint8
	types     []typeRecord

	// before indexes the type in effect before the first transition.
	before int

	// tail extrapolates past the last transition. A nil tail continues
	// the type at tailStd indefinitely; otherwise tailStd and tailDst
	// index the rule's two types.
	tail    *tzposix.Rule
	tailStd int
	tailDst int

	fromCache bool
}

// New returns the zone for the given key, such as "Europe/Berlin".
// Repeated calls with the same key return the same instance as long as
// it is referenced somewhere; see ClearCache.
func New(key string) (*Zone, error) {
	return cachedZone(key)
}

// NewNoCache constructs a fresh zone for the given key, bypassing the
// cache in both directions: no cached instance is returned and the
// result is not retained.
func NewNoCache(key string) (*Zone, error) {
	return loadZone(key)
}

// FromReader constructs a zone directly from a TZif stream, bypassing
// both the search path and the cache. key names the result and may be
// empty.
func FromReader(r io.Reader, key string) (*Zone, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zoneinfo: reading %q: %w", key, err)
	}
	return fromBytes(data, key)
}

// loadZone locates and reads the TZif file for key. Construction errors
// leave no trace; callers decide about caching.
func loadZone(key string) (*Zone, error) {
	path, err := findTZFile(key)
	if err != nil {
		return nil, err
	}
	var data []byte
	switch {
	case path != "":
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("zoneinfo: reading %s: %w", path, err)
		}
	case LoadTZData != nil:
		rc, err := LoadTZData(key)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("zoneinfo: %w: %q", ErrNoSuchZone, key)
		}
		if err != nil {
			return nil, fmt.Errorf("zoneinfo: loading %q: %w", key, err)
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("zoneinfo: loading %q: %w", key, err)
		}
	default:
		return nil, fmt.Errorf("zoneinfo: %w: %q", ErrNoSuchZone, key)
	}
	return fromBytes(data, key)
}

// Key returns the IANA key the zone was constructed with.
func (z *Zone) Key() string { return z.key }

// FromCache reports whether the zone was constructed through the cached
// path and is eligible to be shared.
func (z *Zone) FromCache() bool { return z.fromCache }

// Version returns the raw version octet of the underlying TZif file.
func (z *Zone) Version() tzif.Version { return z.version }

// LeapSeconds returns a copy of the file's leap-second table. The zone
// performs no leap-second arithmetic; the table is carried through for
// callers that do.
func (z *Zone) LeapSeconds() []tzif.LeapSecondRecord {
	return slices.Clone(z.leaps)
}

func (z *Zone) String() string {
	if z.key != "" {
		return z.key
	}
	return "zoneinfo.Zone(unkeyed)"
}

// Equal reports whether o denotes the same zone loaded from the same
// underlying bytes. Distinct instances constructed from identical data
// compare equal even though they are not identical.
func (z *Zone) Equal(o *Zone) bool {
	return o != nil && z.key == o.key && bytes.Equal(z.raw, o.raw)
}

// UTCOffset returns the total offset from UTC in effect at the given
// wall reading. The civil fields of local are interpreted in the zone;
// its Location is ignored.
func (z *Zone) UTCOffset(local time.Time, fold int) time.Duration {
	return z.wallLookup(local, fold).utcoffDur
}

// DST returns the daylight saving component of the offset at the given
// wall reading. It is zero exactly when standard time is in effect.
func (z *Zone) DST(local time.Time, fold int) time.Duration {
	return z.wallLookup(local, fold).dstoffDur
}

// TZName returns the designation in effect at the given wall reading,
// such as "CET" or "+05".
func (z *Zone) TZName(local time.Time, fold int) string {
	return z.wallLookup(local, fold).name
}

// IsDST reports whether daylight saving time is in effect at the given
// wall reading.
func (z *Zone) IsDST(local time.Time, fold int) bool {
	return z.wallLookup(local, fold).isdst
}

func (z *Zone) wallLookup(local time.Time, fold int) *typeRecord {
	ts := unixtime.FromTime(local)
	return z.lookupLocal(ts, local.Year(), fold&1)
}

// FromUTC converts an instant whose civil fields are denominated in UTC
// to the zone's wall reading, reporting the fold that disambiguates it.
// The result carries the Location of the input, shifted by the offset.
func (z *Zone) FromUTC(utc time.Time) (time.Time, int) {
	ts := unixtime.FromTime(utc)
	rec, fold := z.lookupFromUTC(ts, utc.Year())
	return utc.Add(rec.utcoffDur), fold
}

// LookupUTC returns the offset, daylight saving and designation in
// effect at the given UTC instant.
func (z *Zone) LookupUTC(utc time.Time) (offset, dst time.Duration, name string) {
	rec := z.lookupUTC(unixtime.FromTime(utc), utc.Year())
	return rec.utcoffDur, rec.dstoffDur, rec.name
}

// MarshalBinary serialises the zone as its key followed by the raw TZif
// bytes it was built from.
func (z *Zone) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, len(z.key)+len(z.raw)+binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(len(z.key)))
	buf = append(buf, z.key...)
	buf = append(buf, z.raw...)
	return buf, nil
}

// UnmarshalBinary restores a zone serialised by MarshalBinary. The
// restored zone is Equal to the original and produces identical lookup
// results, but does not come from the cache.
func (z *Zone) UnmarshalBinary(data []byte) error {
	keyLen, n := binary.Uvarint(data)
	if n <= 0 || keyLen > uint64(len(data)-n) {
		return fmt.Errorf("zoneinfo: truncated serialised zone")
	}
	key := string(data[n : n+int(keyLen)])
	raw := slices.Clone(data[n+int(keyLen):])
	restored, err := fromBytes(raw, key)
	if err != nil {
		return err
	}
	*z = *restored
	return nil
}
