package extractors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// IDValidity is how long a national ID stays valid after issue: seven
// 365-day years.
const IDValidity = 7 * 365 * 24 * time.Hour

var isoLayouts = []string{
	dateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NormalizeDate rewrites ISO or YYYY/M/D dates as YYYY-MM-DD and returns any
// other value unchanged.
func NormalizeDate(value string) string {
	v := strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(dateLayout)
		}
	}
	if t, err := time.Parse("2006/1/2", v); err == nil {
		return t.Format(dateLayout)
	}
	return value
}

// normalizeDateFields applies NormalizeDate to the non-empty string values of keys.
func normalizeDateFields(data map[string]any, keys ...string) {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			data[k] = NormalizeDate(s)
		}
	}
}

var (
	monthYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{4})$`)
	yearMonth = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})$`)
)

// EndOfMonth turns a month/year note ("8/2022", "2022/8", "2022-08") into the
// last day of that month. Full dates are normalized; anything else is
// returned unchanged.
func EndOfMonth(value string) string {
	v := strings.TrimSpace(toASCIIDigits(value))
	var year, month string
	if m := monthYear.FindStringSubmatch(v); m != nil {
		month, year = m[1], m[2]
	} else if m := yearMonth.FindStringSubmatch(v); m != nil {
		year, month = m[1], m[2]
	} else {
		return NormalizeDate(value)
	}
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	if mo < 1 || mo > 12 {
		return value
	}
	return time.Date(y, time.Month(mo)+1, 0, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// BackfillExpiration sets expiration_date to issue_date plus IDValidity when
// the model left it out. It reports whether a value was added.
func BackfillExpiration(data map[string]any) bool {
	if !isBlank(data["expiration_date"]) {
		return false
	}
	issue, ok := data["issue_date"].(string)
	if !ok || strings.TrimSpace(issue) == "" {
		return false
	}
	issued, err := time.Parse(dateLayout, NormalizeDate(issue))
	if err != nil {
		return false
	}
	data["expiration_date"] = issued.Add(IDValidity).Format(dateLayout)
	return true
}

// fillMissing sets every absent or null key to "".
func fillMissing(data map[string]any, keys []string) {
	for _, k := range keys {
		if v, ok := data[k]; !ok || v == nil {
			data[k] = ""
		}
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

var digitRun = regexp.MustCompile(`\d+`)

// integersAfter returns every integer that follows the first occurrence of
// marker in text, or none when the marker is absent.
func integersAfter(text, marker string) []int64 {
	_, after, found := strings.Cut(text, marker)
	if !found {
		return []int64{}
	}
	nums := []int64{}
	for _, s := range digitRun.FindAllString(toASCIIDigits(after), -1) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// toASCIIDigits maps Arabic-Indic and Eastern Arabic-Indic digits to 0-9.
func toASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

func numberedList(keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		fmt.Fprintf(&b, "%d. %s\n", i+1, k)
	}
	return b.String()
}
