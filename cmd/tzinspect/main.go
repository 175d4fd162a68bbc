// Command tzinspect dumps a compiled TZif file: header, local time
// types, transitions and the footer rule. With -at it additionally
// resolves the offset in effect at the given UTC instant.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ngrash/go-zoneinfo/tzif"
	"github.com/ngrash/go-zoneinfo/zoneinfo"
)

var (
	atFlag    = flag.String("at", "", "resolve the offset at this UTC instant (RFC 3339)")
	transFlag = flag.Bool("transitions", false, "print every transition")
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: tzinspect [flags] <tzif file>")
		os.Exit(1)
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalln("reading file:", err)
	}

	f, err := tzif.DecodeFile(bytes.NewReader(b))
	if err != nil {
		log.Fatalln("decoding:", err)
	}
	if !f.Version.Recognized() {
		log.Printf("unrecognized version %v, read as %v", f.Version, tzif.V2)
	}

	printFile(f)

	if *atFlag != "" {
		at, err := time.Parse(time.RFC3339, *atFlag)
		if err != nil {
			log.Fatalln("parsing -at:", err)
		}
		z, err := zoneinfo.FromReader(bytes.NewReader(b), args[0])
		if err != nil {
			log.Fatalln("building zone:", err)
		}
		offset, dst, name := z.LookupUTC(at.UTC())
		fmt.Println("Lookup", at.UTC().Format(time.RFC3339))
		fmt.Println("  utcoffset =", offset)
		fmt.Println("  dst       =", dst)
		fmt.Println("  tzname    =", name)
	}
}

func printFile(f tzif.File) {
	h := f.Header
	fmt.Println("Header")
	fmt.Println("  version  =", f.Version)
	fmt.Println("  isutcnt  =", h.Isutcnt)
	fmt.Println("  isstdcnt =", h.Isstdcnt)
	fmt.Println("  leapcnt  =", h.Leapcnt)
	fmt.Println("  timecnt  =", h.Timecnt)
	fmt.Println("  typecnt  =", h.Typecnt)
	fmt.Println("  charcnt  =", h.Charcnt)
	fmt.Println()

	b := f.Block
	fmt.Println("Local time types")
	for i, t := range b.LocalTimeTypes {
		name, err := b.Designation(t.Idx)
		if err != nil {
			name = fmt.Sprintf("<%v>", err)
		}
		fmt.Printf("  [%d] utoff=%d dst=%v designation=%q\n", i, t.Utoff, t.Dst, name)
	}
	fmt.Println()

	if *transFlag {
		fmt.Println("Transitions")
		for i, tt := range b.TransitionTimes {
			fmt.Printf("  %s -> type %d\n", time.Unix(tt, 0).UTC().Format(time.RFC3339), b.TransitionTypes[i])
		}
	} else {
		fmt.Printf("Transitions (%d, -transitions to list)\n", len(b.TransitionTimes))
	}
	fmt.Println()

	fmt.Printf("  TimeZoneDesignations (%d) = %v\n", len(b.TimeZoneDesignations), strings.Split(strings.TrimSuffix(string(b.TimeZoneDesignations), "\x00"), "\x00"))
	fmt.Printf("  LeapSecondRecords (%d) = %+v\n", len(b.LeapSecondRecords), b.LeapSecondRecords)
	fmt.Printf("  StandardWallIndicators (%d) = %v\n", len(b.StandardWallIndicators), b.StandardWallIndicators)
	fmt.Printf("  UTLocalIndicators (%d) = %v\n", len(b.UTLocalIndicators), b.UTLocalIndicators)
	fmt.Println()

	fmt.Println("Footer")
	fmt.Println("  TZString =", f.TZString)
}
