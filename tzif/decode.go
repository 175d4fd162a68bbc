package tzif

import (
	"fmt"
	"io"
)

// File is a fully decoded TZif file. For version 2+ files the version 1
// data block is discarded during decoding; Header and Block describe the
// authoritative (second) header and block.
type File struct {
	// Version is the raw version octet from the file. An unrecognized
	// octet is preserved here while the file is decoded as version 2.
	Version Version
	// Header is the header governing Block.
	Header Header
	// Block is the authoritative data block.
	Block DataBlock
	// TZString is the footer rule string of a version 2+ file. Empty if
	// the footer is empty or the file is version 1.
	TZString string
}

// DecodeFile reads a TZif file from r. Version 2+ files have their
// version 1 block skipped and the 64-bit block selected, per RFC8536
// Section 4. The decoded file is validated structurally; see Validate.
func DecodeFile(r io.Reader) (File, error) {
	var f File
	h1, err := ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v1 header: %w", err)
	}
	f.Version = h1.Version

	if h1.Version == V1 {
		f.Header = h1
		f.Block, err = ReadDataBlock(r, h1, V1TimeSize)
		if err != nil {
			return f, fmt.Errorf("read v1 data block: %w", err)
		}
		return f, Validate(f)
	}

	// Version 2 and up, including unrecognized future versions which are
	// read as version 2. The v1 block only repeats the transitions that
	// fit into 32 bits; skip it.
	if _, err := io.CopyN(io.Discard, r, h1.DataBlockSize(V1TimeSize)); err != nil {
		return f, fmt.Errorf("skip v1 data block: %w", err)
	}
	f.Header, err = ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v2 header: %w", err)
	}
	f.Block, err = ReadDataBlock(r, f.Header, V2TimeSize)
	if err != nil {
		return f, fmt.Errorf("read v2 data block: %w", err)
	}
	footer, err := ReadFooter(r)
	if err != nil {
		return f, fmt.Errorf("read footer: %w", err)
	}
	f.TZString = string(footer.TZString)
	return f, Validate(f)
}

// Encode writes the file to w in its stored version. For version 2+
// files a minimal version 1 header and block are emitted before the
// authoritative block, the shape produced by zic -b slim.
func (f File) Encode(w io.Writer) error {
	if f.Version == V1 {
		if err := f.Header.Write(w); err != nil {
			return fmt.Errorf("write v1 header: %w", err)
		}
		if err := f.Block.Write(w, V1TimeSize); err != nil {
			return fmt.Errorf("write v1 data block: %w", err)
		}
		return nil
	}

	v1block := DataBlock{
		LocalTimeTypes:       []LocalTimeTypeRecord{{}},
		TimeZoneDesignations: []byte{0},
	}
	if err := v1block.DeriveHeader(f.Version).Write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := v1block.Write(w, V1TimeSize); err != nil {
		return fmt.Errorf("write v1 data block: %w", err)
	}

	h2 := f.Header
	h2.Version = f.Version
	if err := h2.Write(w); err != nil {
		return fmt.Errorf("write v2 header: %w", err)
	}
	if err := f.Block.Write(w, V2TimeSize); err != nil {
		return fmt.Errorf("write v2 data block: %w", err)
	}
	if err := (Footer{TZString: []byte(f.TZString)}).Write(w); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}
