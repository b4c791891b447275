package fee

import (
	"fmt"
	"time"
)

// Months lists the 12 months of an academic year in accounting order.
// The academic year runs April through March.
var Months = []Month{
	April, May, June, July, August, September,
	October, November, December, January, February, March,
}

var monthIndex = func() map[Month]int {
	idx := make(map[Month]int, len(Months))
	for i, m := range Months {
		idx[m] = i
	}
	return idx
}()

// IsCalendarMonth reports whether m names one of the 12 calendar months
// (as opposed to the ANNUAL/ADMISSION markers).
func IsCalendarMonth(m Month) bool {
	_, ok := monthIndex[m]
	return ok
}

// AcademicYearOf returns the "{Y}-{Y+1}" academic year label for a date.
// The year boundary is April 1: dates before April belong to the year that
// started the previous calendar year.
func AcademicYearOf(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.April {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}
