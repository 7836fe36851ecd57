package core

import (
	"strings"
	"time"

	"axiapac.com/attendance/utils"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

type DateRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

func (d DateRange) String() string {
	return d.Start + " to " + d.End
}

// layouts tried after ISO and before natural-language parsing.
var dateLayouts = []string{
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var naturalParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ResolveDateRange turns loosely specified bounds into a concrete inclusive
// range. A missing or unparseable start defaults to the first of now's month,
// a missing or unparseable end defaults to now's date. Reversed bounds are
// swapped. It never fails.
func ResolveDateRange(start, end string, now time.Time) DateRange {
	from, ok := ParseLooseDate(start, now)
	if !ok {
		from = utils.StartOfMonth(now)
	}
	to, ok := ParseLooseDate(end, now)
	if !ok {
		to = utils.StartOfDay(now)
	}
	if to.Before(from) {
		from, to = to, from
	}
	return DateRange{Start: from.Format(utils.DateLayout), End: to.Format(utils.DateLayout)}
}

// ParseLooseDate accepts ISO dates, the sheet's "16 Dec 25" style, a set of
// common layouts, and whole-phrase natural language such as "yesterday".
func ParseLooseDate(text string, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}

	if normalized := NormalizeDate(trimmed); IsCanonicalDate(normalized) {
		t, _ := time.ParseInLocation(utils.DateLayout, normalized, now.Location())
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			return utils.StartOfDay(t), true
		}
	}

	r, err := naturalParser.Parse(trimmed, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	// Partial matches like "mon" inside "month-end" are not dates.
	if r.Index != 0 || len(strings.TrimSpace(r.Text)) != len(trimmed) {
		return time.Time{}, false
	}
	return utils.StartOfDay(r.Time), true
}
