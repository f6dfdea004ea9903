package web

import (
	"fmt"
	"html/template"
	"math"
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
)

var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// FileSize formats a byte count with binary (1024-based) units and two
// decimals. Values of 1024 TB and above stay in TB.
func FileSize(bytes uint64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// Percent formats a usage percentage, e.g. "42.13%".
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// BarWidth returns p clamped to [0, 100] for use as a CSS width.
func BarWidth(p float64) string {
	return fmt.Sprintf("%.2f", min(max(p, 0), 100))
}

// Comma formats n with thousands separators.
func Comma(n uint64) string {
	if n > math.MaxInt64 {
		return humanize.BigComma(new(big.Int).SetUint64(n))
	}
	return humanize.Comma(int64(n))
}

// ResetIn describes a unix timestamp relative to now, e.g. "3 days from now".
// Zero means unknown and yields "".
func ResetIn(unix int64) string {
	if unix == 0 {
		return ""
	}
	return humanize.Time(time.Unix(unix, 0))
}

// ResetDate formats a unix timestamp in UTC. Zero yields "".
func ResetDate(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04 UTC")
}

// FuncMap returns the helpers available to page templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"filesize":  FileSize,
		"percent":   Percent,
		"barwidth":  BarWidth,
		"comma":     Comma,
		"resetin":   ResetIn,
		"resetdate": ResetDate,
	}
}
