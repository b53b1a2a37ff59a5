// Package units converts between human-readable torrent sizes ("700 MB")
// and exact byte counts. The site formats sizes with decimal units
// (powers of 1000), so the table here is decimal too.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Names lists the supported units smallest to largest.
var Names = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// bytesPer maps a unit name to its byte threshold.
var bytesPer = map[string]float64{
	"B":  1,
	"KB": 1e3,
	"MB": 1e6,
	"GB": 1e9,
	"TB": 1e12,
	"PB": 1e15,
	"EB": 1e18,
	"ZB": 1e21,
	"YB": 1e24,
}

// MalformedSizeError reports a size string that could not be decoded.
type MalformedSizeError struct {
	Text string
}

func (e *MalformedSizeError) Error() string {
	return fmt.Sprintf("malformed size %q", e.Text)
}

// Valid reports whether unit is in the unit table. Unit names are
// case-insensitive ("gb" is accepted for config convenience).
func Valid(unit string) bool {
	_, ok := bytesPer[strings.ToUpper(unit)]
	return ok
}

// ParseSize decodes "<number> <unit>" into a byte count.
func ParseSize(text string) (uint64, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 2 {
		return 0, &MalformedSizeError{Text: text}
	}

	number, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || number < 0 {
		return 0, &MalformedSizeError{Text: text}
	}

	scale, ok := bytesPer[strings.ToUpper(fields[1])]
	if !ok {
		return 0, &MalformedSizeError{Text: text}
	}

	return uint64(number * scale), nil
}

// FormatSize renders a byte count with two decimal places. With an empty
// unit it picks the largest unit whose threshold fits; below 1 KB it
// falls back to plain bytes. A non-empty unit forces that unit regardless
// of magnitude.
func FormatSize(size uint64, unit string) string {
	if unit == "" {
		for i := len(Names) - 1; i >= 0; i-- {
			if float64(size) >= bytesPer[Names[i]] {
				unit = Names[i]
				break
			}
		}
		if unit == "" {
			unit = Names[0]
		}
	} else {
		unit = strings.ToUpper(unit)
	}

	return fmt.Sprintf("%.2f %s", float64(size)/bytesPer[unit], unit)
}
