package storage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vfg2006/ads-collector/internal/domain"
)

// outputDir is where file-based sinks write their artifacts.
const outputDir = "dist"

// formatValue renders a canonical value for text output. NULLs become empty
// strings, dates have no time-of-day component.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.DateOnly)
	default:
		return fmt.Sprint(v)
	}
}

func textRow(record domain.AdRecord) []string {
	columns := domain.Columns()

	row := make([]string, len(columns))
	for i, column := range columns {
		row[i] = formatValue(record.Value(column))
	}

	return row
}
