package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// DataBlock is the data block of a TZif file. Version 1 blocks store
// four-octet transition times and leap-second occurrences, version 2+
// blocks store eight octets; both decode into the same widened form.
// The data block is structured as follows:
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type DataBlock struct {
	// TransitionTimes is a series of UNIX leap-time values sorted in
	// strictly ascending order. Each value is used as a transition time
	// at which the rules for computing local time may change.
	TransitionTimes []int64

	// TransitionTypes is a series of one-octet unsigned integers
	// specifying the type of local time of the corresponding transition
	// time. These values serve as zero-based indices into the array of
	// local time type records. Each type index MUST be in the range
	// [0, "typecnt" - 1].
	TransitionTypes []uint8

	// LocalTimeTypes is a series of six-octet records specifying a
	// local time type.
	LocalTimeTypes []LocalTimeTypeRecord

	// TimeZoneDesignations is a series of octets constituting an array
	// of NUL-terminated (0x00) time zone designation strings. Note that
	// two designations MAY overlap if one is a suffix of the other.
	TimeZoneDesignations []byte

	// LeapSecondRecords is a series of records specifying the
	// corrections that need to be applied to UTC in order to determine
	// TAI. The records are sorted by the occurrence time in strictly
	// ascending order.
	LeapSecondRecords []LeapSecondRecord

	// StandardWallIndicators is a series of one-octet values indicating
	// whether the transition times associated with local time types
	// were specified as standard time (1) or wall-clock time (0). If
	// "isstdcnt" is zero, all transition times are assumed to be
	// specified as wall time.
	StandardWallIndicators []bool

	// UTLocalIndicators is a series of one-octet values indicating
	// whether the transition times associated with local time types
	// were specified as UT (1) or local time (0). If "isutcnt" is zero,
	// all transition times are assumed to be specified as local time.
	UTLocalIndicators []bool
}

// ReadDataBlock reads the data block described by h from r, decoding
// transition times and leap-second occurrences of the given width.
func ReadDataBlock(r io.Reader, h Header, timeSize int) (DataBlock, error) {
	var b DataBlock
	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int64, h.Timecnt)
		if timeSize == V1TimeSize {
			narrow := make([]int32, h.Timecnt)
			if err := binary.Read(r, order, &narrow); err != nil {
				return b, fmt.Errorf("reading transition times: %w", err)
			}
			for i, t := range narrow {
				b.TransitionTimes[i] = int64(t)
			}
		} else {
			if err := binary.Read(r, order, &b.TransitionTimes); err != nil {
				return b, fmt.Errorf("reading transition times: %w", err)
			}
		}
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, order, &b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypes = make([]LocalTimeTypeRecord, h.Typecnt)
		for i := range b.LocalTimeTypes {
			if err := binary.Read(r, order, &b.LocalTimeTypes[i]); err != nil {
				return b, fmt.Errorf("reading local time type record: %w", err)
			}
		}
	}
	if h.Charcnt > 0 {
		b.TimeZoneDesignations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, b.TimeZoneDesignations); err != nil {
			return b, fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		b.LeapSecondRecords = make([]LeapSecondRecord, h.Leapcnt)
		for i := range b.LeapSecondRecords {
			var err error
			b.LeapSecondRecords[i], err = readLeapSecondRecord(r, timeSize)
			if err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]bool, h.Isstdcnt)
		for i := range b.StandardWallIndicators {
			if err := binary.Read(r, order, &b.StandardWallIndicators[i]); err != nil {
				return b, fmt.Errorf("reading standard/wall indicator: %w", err)
			}
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]bool, h.Isutcnt)
		for i := range b.UTLocalIndicators {
			if err := binary.Read(r, order, &b.UTLocalIndicators[i]); err != nil {
				return b, fmt.Errorf("reading UT/local indicator: %w", err)
			}
		}
	}
	return b, nil
}

// Write writes the data block to w with the given time value width.
// Version 1 encodings truncate transition times and leap occurrences to
// four octets.
func (b DataBlock) Write(w io.Writer, timeSize int) error {
	if timeSize == V1TimeSize {
		for _, t := range b.TransitionTimes {
			if err := binary.Write(w, order, int32(t)); err != nil {
				return err
			}
		}
	} else {
		if err := binary.Write(w, order, b.TransitionTimes); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, b.TransitionTypes); err != nil {
		return err
	}
	for _, r := range b.LocalTimeTypes {
		if err := r.Write(w); err != nil {
			return err
		}
	}
	if _, err := w.Write(b.TimeZoneDesignations); err != nil {
		return err
	}
	for _, r := range b.LeapSecondRecords {
		if err := r.write(w, timeSize); err != nil {
			return err
		}
	}
	for _, v := range b.StandardWallIndicators {
		if err := binary.Write(w, order, v); err != nil {
			return err
		}
	}
	for _, v := range b.UTLocalIndicators {
		if err := binary.Write(w, order, v); err != nil {
			return err
		}
	}
	return nil
}

// DeriveHeader computes the header matching the block's contents.
func (b DataBlock) DeriveHeader(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocalIndicators)),
		Isstdcnt: uint32(len(b.StandardWallIndicators)),
		Leapcnt:  uint32(len(b.LeapSecondRecords)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypes)),
		Charcnt:  uint32(len(b.TimeZoneDesignations)),
	}
}

// Designation returns the NUL-terminated designation string starting at
// the given offset into the designation pool.
func (b DataBlock) Designation(idx uint8) (string, error) {
	if int(idx) >= len(b.TimeZoneDesignations) {
		return "", fmt.Errorf("designation index %d out of range", idx)
	}
	rest := b.TimeZoneDesignations[idx:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated designation at index %d", idx)
	}
	return string(rest[:end]), nil
}
