package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"axiapac.com/attendance/utils"
)

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayMonthPattern  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4}|\d{2})$`)
	clock12hrPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s?(am|pm)$`)
)

var monthAbbreviations = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// NormalizeDate converts a free-text date cell to YYYY-MM-DD.
//
// Blank input yields "". Input already in canonical form, or in
// "<day> <month> <year>" form such as "16 Dec 25", is canonicalised. Anything
// else is returned verbatim and must be re-validated by the caller.
func NormalizeDate(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if isoDatePattern.MatchString(trimmed) {
		return trimmed
	}

	m := dayMonthPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return text
	}

	month := monthNumber(m[2])
	if month == 0 {
		return text
	}

	year := m[3]
	if len(year) == 2 {
		year = "20" + year
	}
	day := m[1]
	if len(day) == 1 {
		day = "0" + day
	}
	return fmt.Sprintf("%s-%02d-%s", year, month, day)
}

func monthNumber(token string) int {
	lower := strings.ToLower(token)
	for i, abbr := range monthAbbreviations {
		if strings.HasPrefix(lower, abbr) {
			return i + 1
		}
	}
	return 0
}

// IsCanonicalDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsCanonicalDate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(utils.DateLayout, s)
	return err == nil
}

// NormalizeTime converts a free-text time cell to HH:MM:SS. The second return
// value is false when the cell is blank, a sentinel ("-", "null"), a negative
// duration, or otherwise unparseable. It never fails the caller.
func NormalizeTime(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "-" || strings.EqualFold(trimmed, "null") {
		return "", false
	}
	if strings.HasPrefix(trimmed, "-") {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "am") || strings.Contains(lower, "pm") {
		if m := clock12hrPattern.FindStringSubmatch(lower); m != nil {
			hour, _ := strconv.Atoi(m[1])
			minute, _ := strconv.Atoi(m[2])
			switch {
			case hour == 12 && m[3] == "am":
				hour = 0
			case m[3] == "pm" && hour >= 1 && hour <= 11:
				hour += 12
			}
			return formatClock(hour, minute, 0)
		}
	}

	if !strings.Contains(trimmed, ":") {
		return "", false
	}

	// Components past the seconds are ignored.
	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	if len(parts) == 2 {
		parts = append(parts, "00")
	}

	values := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", false
		}
		values[i] = v
	}
	return formatClock(values[0], values[1], values[2])
}

func formatClock(hour, minute, second int) (string, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), true
}

// normalizeTimePtr adapts NormalizeTime to the nullable record fields.
func normalizeTimePtr(text string) *string {
	if v, ok := NormalizeTime(text); ok {
		return &v
	}
	return nil
}
