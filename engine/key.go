package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// WINDOW KEY - Stable identity of a window, used to index usage records
// =============================================================================

// Key identifies a window. Shapes:
//
//	"2024"       annual (calendar or anniversary start-year)
//	"2024_07"    monthly
//	"2024_Q3"    quarterly
//	"2024_H2"    semi-annual
//	"2024_2028"  quadrennial block
type Key string

// ErrInvalidKey is returned when a key cannot belong to a frequency.
var ErrInvalidKey = errors.New("invalid window key")

var keyShapes = map[Frequency]*regexp.Regexp{
	Monthly:           regexp.MustCompile(`^(\d{4})_(0[1-9]|1[0-2])$`),
	Quarterly:         regexp.MustCompile(`^(\d{4})_Q([1-4])$`),
	SemiAnnual:        regexp.MustCompile(`^(\d{4})_H([12])$`),
	AnnualCalendar:    regexp.MustCompile(`^(\d{4})$`),
	AnnualAnniversary: regexp.MustCompile(`^(\d{4})$`),
	Quadrennial:       regexp.MustCompile(`^(\d{4})_(\d{4})$`),
}

func monthlyKey(year int, month int) Key { return Key(fmt.Sprintf("%d_%02d", year, month)) }
func quarterlyKey(year, quarter int) Key { return Key(fmt.Sprintf("%d_Q%d", year, quarter)) }
func semiAnnualKey(year, half int) Key { return Key(fmt.Sprintf("%d_H%d", year, half)) }
func annualKey(year int) Key { return Key(strconv.Itoa(year)) }
func quadrennialKey(start, end int) Key { return Key(fmt.Sprintf("%d_%d", start, end)) }

// ParseKey splits a key into its year and its position within the cycle
// (month, quarter, half; 1 for single-window policies). The year is the
// calendar year for sub-annual policies and the start year otherwise.
func ParseKey(f Frequency, k Key) (year, index int, err error) {
	f = f.policy()
	m := keyShapes[f].FindStringSubmatch(string(k))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q for %s", ErrInvalidKey, k, f)
	}
	year, _ = strconv.Atoi(m[1])
	index = 1
	switch f {
	case Monthly, Quarterly, SemiAnnual:
		index, _ = strconv.Atoi(m[2])
	case Quadrennial:
		end, _ := strconv.Atoi(m[2])
		if end != year+4 {
			return 0, 0, fmt.Errorf("%w: %q spans %d years", ErrInvalidKey, k, end-year)
		}
	}
	return year, index, nil
}

// ValidKey reports whether k has a shape that can occur for f.
func ValidKey(f Frequency, k Key) bool {
	_, _, err := ParseKey(f, k)
	return err == nil
}

func (k Key) String() string { return string(k) }
