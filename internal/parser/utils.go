package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	digitsRe  = regexp.MustCompile(`\d+`)
	numericRe = regexp.MustCompile(`[^\d,.\-]`)
	brDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// NormalizeColumnName trims and lower-cases a header for comparison
func NormalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseNumber coerces a cell to a float.
// Text keeps only digits, separators and minus; malformed input yields 0.
func ParseNumber(c Cell) float64 {
	switch c.Kind {
	case CellNumber:
		return c.Number
	case CellText:
		return parseLocaleNumber(c.Text)
	}
	return 0
}

// parseLocaleNumber accepts "R$ 1.234,56", "1,234.56", "12,5" and "-3".
// When both separators appear the last one is the decimal mark.
func parseLocaleNumber(text string) float64 {
	cleaned := numericRe.ReplaceAllString(text, "")
	// only a leading minus marks a negative amount
	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	if cleaned == "" {
		return 0
	}
	if negative {
		cleaned = "-" + cleaned
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// extra commas are grouping marks
		head := strings.ReplaceAll(cleaned[:lastComma], ",", "")
		cleaned = head + "." + cleaned[lastComma+1:]
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractTableNumber returns the first run of digits in a table label
func ExtractTableNumber(label string) (int, bool) {
	match := digitsRe.FindString(strings.TrimSpace(label))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseReportDate converts a date cell to YYYY-MM-DD.
// Accepts an Excel date serial, a DD/MM/YYYY prefix or an ISO date prefix; impossible days are rejected.
func ParseReportDate(c Cell) (string, bool) {
	switch c.Kind {
	case CellNumber:
		if c.Number <= 0 {
			return "", false
		}
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	case CellText:
		value := strings.TrimSpace(c.Text)
		if m := brDateRe.FindStringSubmatch(value); m != nil {
			return validDate(m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1]))
		}
		if isoDateRe.MatchString(value) {
			return validDate(value[:10])
		}
	}
	return "", false
}

// validDate rejects calendar-impossible days such as 31/02
func validDate(date string) (string, bool) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
