package zoneinfo

import (
	"bytes"
	"fmt"

	"github.com/ngrash/go-zoneinfo/tzif"
	"github.com/ngrash/go-zoneinfo/tzposix"
)

// fallbackDSTOffset is assumed for daylight saving types whose saving
// cannot be derived from the transition table. One hour is a much better
// guess than zero and keeps IsDST consistent with DST.
const fallbackDSTOffset = 3600

func fromBytes(data []byte, key string) (*Zone, error) {
	f, err := tzif.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zoneinfo: %q: %w", key, err)
	}
	z := &Zone{
		key:     key,
		raw:     data,
		version: f.Version,
		leaps:   f.Block.LeapSecondRecords,
	}
	if err := z.build(f); err != nil {
		return nil, fmt.Errorf("zoneinfo: %q: %w", key, err)
	}
	return z, nil
}

func (z *Zone) build(f tzif.File) error {
	block := f.Block

	dstoffs := deriveDSTOffsets(block.TransitionTypes, block.LocalTimeTypes)
	z.types = make([]typeRecord, 0, len(block.LocalTimeTypes)+2)
	for i, t := range block.LocalTimeTypes {
		name, err := block.Designation(t.Idx)
		if err != nil {
			return err
		}
		z.types = append(z.types, newTypeRecord(int64(t.Utoff), dstoffs[i], t.Dst, name))
	}
	if len(z.types) == 0 {
		// Unreachable for validated files (typecnt >= 1); keep lookups
		// total anyway.
		z.types = append(z.types, newTypeRecord(0, 0, false, "UTC"))
	}

	z.transUTC = block.TransitionTimes
	z.transType = block.TransitionTypes
	z.before = typeBefore(block.LocalTimeTypes)
	z.transWall = projectWall(z.transUTC, z.transType, z.types, z.before)

	n := len(z.transUTC)
	switch {
	case f.TZString != "":
		rule, err := tzposix.Parse(f.TZString)
		if err != nil {
			return fmt.Errorf("footer: %w", err)
		}
		if rule.HasDST() {
			z.tail = rule
			z.tailStd = len(z.types)
			z.types = append(z.types, newTypeRecord(rule.StdOffset, 0, false, rule.StdAbbr))
			z.tailDst = len(z.types)
			z.types = append(z.types, newTypeRecord(rule.DstOffset, rule.DSTDiff(), true, rule.DstAbbr))
		} else {
			z.tailStd = len(z.types)
			z.types = append(z.types, newTypeRecord(rule.StdOffset, 0, false, rule.StdAbbr))
		}
	case n > 0:
		z.tailStd = int(z.transType[n-1])
	default:
		z.tailStd = z.before
	}
	return nil
}

// typeBefore selects the type applied to instants before the first
// transition: the first non-DST type, or the first type if all of them
// are DST.
func typeBefore(types []tzif.LocalTimeTypeRecord) int {
	for i, t := range types {
		if !t.Dst {
			return i
		}
	}
	return 0
}

// deriveDSTOffsets infers the daylight saving of each DST type. The
// saving is not stored in TZif; it is reconstructed by comparing a DST
// type's offset with the standard type it transitions from, or, failing
// that, into. One chronological pass; a DST type that cannot be resolved
// (both neighbours DST at every occurrence) falls back to one hour. The
// base offset and the saving occasionally shift together, which is why
// only adjacent standard types are consulted.
func deriveDSTOffsets(transTypes []uint8, types []tzif.LocalTimeTypeRecord) []int64 {
	dstoffs := make([]int64, len(types))
	remaining := 0
	for _, t := range types {
		if t.Dst {
			remaining++
		}
	}

	for i := 1; i < len(transTypes) && remaining > 0; i++ {
		idx := transTypes[i]
		if !types[idx].Dst || dstoffs[idx] != 0 {
			continue
		}

		var dstoff int64
		utoff := int64(types[idx].Utoff)

		if prev := transTypes[i-1]; !types[prev].Dst {
			dstoff = utoff - int64(types[prev].Utoff)
		}
		if dstoff == 0 && i < len(transTypes)-1 {
			// The transition out of a multi-DST stretch may still pin
			// the saving; if the successor is DST too, a later
			// occurrence of this type has to resolve it.
			if next := transTypes[i+1]; !types[next].Dst {
				dstoff = utoff - int64(types[next].Utoff)
			}
		}
		if dstoff != 0 {
			dstoffs[idx] = dstoff
			remaining--
		}
	}

	for i, t := range types {
		if t.Dst && dstoffs[i] == 0 {
			dstoffs[i] = fallbackDSTOffset
		}
	}
	return dstoffs
}

// projectWall projects the UTC transition instants into wall readings,
// one array per fold. At each transition the wall clock reads the
// instant twice, once under the outgoing offset and once under the
// incoming one: fold 0 takes the larger projection (the reading under
// the pre-jump offset at an overlap), fold 1 the smaller.
func projectWall(transUTC []int64, transTypes []uint8, types []typeRecord, before int) [2][]int64 {
	var wall [2][]int64
	n := len(transUTC)
	if n == 0 {
		return wall
	}
	wall[0] = make([]int64, n)
	wall[1] = make([]int64, n)

	prev := types[before].utcoff
	for i := 0; i < n; i++ {
		next := types[transTypes[i]].utcoff
		hi, lo := prev, next
		if lo > hi {
			hi, lo = lo, hi
		}
		wall[0][i] = transUTC[i] + hi
		wall[1][i] = transUTC[i] + lo
		prev = next
	}
	return wall
}
