package dataset

import (
	"strconv"
	"time"
)

// DateLayout is the layout used for date-only cells.
const DateLayout = "2006-01-02"

// FormatCell renders a cell for delimited or spreadsheet output.
// Numbers use the shortest exact representation; times at midnight are
// written as dates, others as RFC 3339.
func FormatCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(DateLayout)
		}
		return v.Format(time.RFC3339)
	case nil:
		return ""
	default:
		return ""
	}
}
