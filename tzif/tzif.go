// Package tzif implements the TZif file format according to RFC8536.
// https://datatracker.ietf.org/doc/html/rfc8536
package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// NOTE: All multi-octet integer values MUST be stored in network octet
// order format (high-order octet first, otherwise known as big-endian),
// with all bits significant.  Signed integer values MUST be represented
// using two's complement.
var order = binary.BigEndian

// Version represents the version of a TZif file.
// The version is an octet identifying the version of the file's format.
// In V1, time values are 32bit (four-octets) and in V2 upwards time values
// are 64bit (eight-octets).
type Version byte

const (
	// V1 represents a version 1 TZif file. The file contains only the
	// version 1 header and data block and has no footer.
	V1 Version = 0x00
	// V2 represents a version 2 TZif file. The file contains the version 1
	// header and data block, a version 2+ header and data block, and a
	// footer whose TZ string, if nonempty, adheres to the requirements of
	// the TZ environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX].
	V2 Version = '2'
	// V3 represents a version 3 TZif file. Like V2, except that the TZ
	// string MAY use the extensions described in Section 3.3.1 of RFC8536
	// (hours beyond 24 in rule times, angle-bracketed designations).
	V3 Version = '3'
	// V4 represents a version 4 TZif file. It is not specified in RFC8536
	// but is specified in the tzfile(5) man page; the differences to V3
	// concern only the interpretation of leap-second records.
	V4 Version = '4'
)

// Recognized reports whether v is a version this package knows. Files
// with an unrecognized version octet are decoded as version 2 files, per
// the forward-compatibility advice in RFC8536 Section 3; DecodeFile
// preserves the raw octet so callers can surface a warning.
func (v Version) Recognized() bool {
	switch v {
	case V1, V2, V3, V4:
		return true
	}
	return false
}

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", byte(v))
	}
}

// Magic is the four-octet ASCII sequence "TZif" (0x54 0x5A 0x69 0x66),
// which identifies the file as utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Time value widths of the two data block encodings.
const (
	V1TimeSize = 4
	V2TimeSize = 8
)

// Header is the header of a TZif file.
//
// A TZif header is structured as follows (the lengths of multi-octet
// fields are shown in parentheses):
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	// Version is an octet identifying the version of the file's format.
	Version Version
	// Reserved for future use.
	Reserved [15]byte

	// Isutcnt is a four-octet unsigned integer specifying the number of
	// UT/local indicators contained in the data block -- MUST either be
	// zero or equal to "typecnt".
	Isutcnt uint32

	// Isstdcnt is a four-octet unsigned integer specifying the number of
	// standard/wall indicators contained in the data block -- MUST
	// either be zero or equal to "typecnt".
	Isstdcnt uint32

	// Leapcnt is a four-octet unsigned integer specifying the number of
	// leap-second records contained in the data block.
	Leapcnt uint32

	// Timecnt is a four-octet unsigned integer specifying the number of
	// transition times contained in the data block.
	Timecnt uint32

	// Typecnt is a four-octet unsigned integer specifying the number of
	// local time type records contained in the data block -- MUST NOT be
	// zero.
	Typecnt uint32

	// Charcnt is a four-octet unsigned integer specifying the total number
	// of octets used by the set of time zone designations contained in
	// the data block - MUST NOT be zero. The count includes the trailing
	// NUL (0x00) octet at the end of the last time zone designation.
	Charcnt uint32
}

// Write writes the Header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads a Header from r, checking the magic sequence.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if err := binary.Read(r, order, &magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// DataBlockSize returns the octet count of the data block described by h
// when encoded with the given time value width. It is what a reader must
// skip to move past the version 1 block of a version 2+ file.
func (h Header) DataBlockSize(timeSize int) int64 {
	return int64(h.Timecnt)*int64(timeSize) +
		int64(h.Timecnt) +
		int64(h.Typecnt)*6 +
		int64(h.Charcnt) +
		int64(h.Leapcnt)*int64(timeSize+4) +
		int64(h.Isstdcnt) +
		int64(h.Isutcnt)
}

// LocalTimeTypeRecord represents a local time type record.
// Each record has the following format (the lengths of multi-octet fields
// are shown in parentheses):
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeTypeRecord struct {
	// Utoff is a four-octet signed integer specifying the number of
	// seconds to be added to UT in order to determine local time.
	// The value MUST NOT be -2**31 and SHOULD be in the range
	// [-89999, 93599] (i.e., its value SHOULD be more than -25 hours
	// and less than 26 hours).
	Utoff int32

	// Dst is a one-octet value indicating whether local time should
	// be considered Daylight Saving Time (DST). The value MUST be 0
	// or 1.
	Dst bool

	// Idx is a one-octet unsigned integer specifying a zero-based
	// index into the series of time zone designation octets, thereby
	// selecting a particular designation string. Each index MUST be
	// in the range [0, "charcnt" - 1]; it designates the
	// NUL-terminated string of octets starting at position "idx" in
	// the time zone designations. A NUL octet MUST exist in the time
	// zone designations at or after position "idx".
	Idx uint8
}

// Write writes the record to w.
func (r LocalTimeTypeRecord) Write(w io.Writer) error {
	if err := binary.Write(w, order, r.Utoff); err != nil {
		return err
	}
	if err := binary.Write(w, order, r.Dst); err != nil {
		return err
	}
	return binary.Write(w, order, r.Idx)
}

// LeapSecondRecord represents a leap-second record. On disk the occurrence
// is four octets wide in version 1 data blocks and eight octets wide in
// version 2+ data blocks; this package widens both to int64.
//
//	+---------------+---------------+
//	|  occur (4/8)  |  corr (4)     |
//	+---------------+---------------+
type LeapSecondRecord struct {
	// Occur is a UNIX leap time value specifying the time at which a
	// leap-second correction occurs. The first value, if present, MUST
	// be nonnegative.
	Occur int64

	// Corr is a four-octet signed integer specifying the value of
	// LEAPCORR on or after the occurrence. The value of LEAPCORR is
	// zero for timestamps that occur before the occurrence time in the
	// first leap-second record (or for all timestamps if there are no
	// leap-second records).
	Corr int32
}

func (r LeapSecondRecord) write(w io.Writer, timeSize int) error {
	if timeSize == V1TimeSize {
		if err := binary.Write(w, order, int32(r.Occur)); err != nil {
			return err
		}
	} else {
		if err := binary.Write(w, order, r.Occur); err != nil {
			return err
		}
	}
	return binary.Write(w, order, r.Corr)
}

func readLeapSecondRecord(r io.Reader, timeSize int) (LeapSecondRecord, error) {
	var rec LeapSecondRecord
	if timeSize == V1TimeSize {
		var occur int32
		if err := binary.Read(r, order, &occur); err != nil {
			return rec, err
		}
		rec.Occur = int64(occur)
	} else {
		if err := binary.Read(r, order, &rec.Occur); err != nil {
			return rec, err
		}
	}
	err := binary.Read(r, order, &rec.Corr)
	return rec, err
}

// Footer represents the footer of a TZif file.
// The footer is structured as follows:
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
type Footer struct {
	// TZString contains a rule for computing local time changes after the
	// last transition time stored in the version 2+ data block. The
	// string is either empty or uses the expanded format of the "TZ"
	// environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX] with ASCII encoding, possibly
	// utilizing the extensions described in Section 3.3.1 of RFC8536 in
	// version 3+ files. If the string is empty, the corresponding
	// information is not available. The string MUST NOT contain NUL
	// octets or be NUL-terminated, and it SHOULD NOT begin with the ':'
	// (colon) character.
	TZString []byte
}

var asciiNewLine = byte(0x0A)

// Write writes the Footer to w.
func (f Footer) Write(w io.Writer) error {
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return err
	}
	if _, err := w.Write(f.TZString); err != nil {
		return err
	}
	_, err := w.Write([]byte{asciiNewLine})
	return err
}

// ReadFooter reads a Footer from r.
func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
