// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pattern

import (
	"strconv"
	"strings"
	"time"
)

// validShortDate6 accepts yymmdd strings naming a real calendar day.
// yy 00-49 maps to 20yy, 50-99 to 19yy.
func validShortDate6(s string) bool {
	if len(s) != 6 {
		return false
	}
	yy, err1 := strconv.Atoi(s[0:2])
	mm, err2 := strconv.Atoi(s[2:4])
	dd, err3 := strconv.Atoi(s[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	year := 1900 + yy
	if yy <= 49 {
		year = 2000 + yy
	}
	return validCalendarDate(year, mm, dd)
}

// validSeparatedDate accepts yyyy?m?d with '.', '/' or '-' separators.
// Days past the end of the month are clamped rather than rejected, so any
// day from 1 to 31 is accepted with a valid month.
func validSeparatedDate(s string) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		nums[i] = n
	}
	return validMonthDay(nums[1], nums[2])
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// validCalendarDate accepts only days that exist in the given month.
func validCalendarDate(year, month, day int) bool {
	if !validMonthDay(month, day) {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
