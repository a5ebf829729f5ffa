package roster

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

const (
	keywordScanRows    = 20
	positionalScanRows = 30
	maxDurationDays    = 365
)

var ErrLayoutNotDetected = errors.New("не удалось определить структуру таблицы")

type DetectionMethod string

const (
	DetectedByHeader   DetectionMethod = "header"
	DetectedByPosition DetectionMethod = "position"
)

// Layout maps semantic fields to column indexes.
type Layout struct {
	FullNameCol     int
	OrganizationCol int
	DaysCol         int
	StartDateCol    int
	DataStartRow    int
	Method          DetectionMethod
}

func (l Layout) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("fio", l.FullNameCol),
		slog.Int("org", l.OrganizationCol),
		slog.Int("days", l.DaysCol),
		slog.Int("start_date", l.StartDateCol),
		slog.Int("data_start", l.DataStartRow),
		slog.String("method", string(l.Method)),
	)
}

var (
	dottedDatePrefix = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
	isoDatePrefix    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// DetectLayout finds the header row by keywords, falling back to locating
// the first row that looks like data. The keyword pass wins when both match.
func DetectLayout(grid Grid) (Layout, error) {
	if layout, ok := detectByHeader(grid); ok {
		return layout, nil
	}

	if layout, ok := detectByPosition(grid); ok {
		return layout, nil
	}

	return Layout{}, ErrLayoutNotDetected
}

func detectByHeader(grid Grid) (Layout, bool) {
	for i := 0; i < min(keywordScanRows, len(grid)); i++ {
		values := make([]string, len(grid[i]))
		for j, cell := range grid[i] {
			values[j] = strings.ToLower(strings.TrimSpace(cell.String()))
		}

		nameIdx := indexOf(values, isNameHeader)
		dateIdx := indexOf(values, isStartDateHeader)

		if nameIdx == -1 || dateIdx == -1 {
			continue
		}

		layout := Layout{
			FullNameCol:     nameIdx,
			OrganizationCol: nameIdx + 1,
			DaysCol:         nameIdx + 2,
			StartDateCol:    dateIdx,
			DataStartRow:    i + 1,
			Method:          DetectedByHeader,
		}

		if idx := indexOf(values, isOrganizationHeader); idx != -1 {
			layout.OrganizationCol = idx
		}

		if idx := indexOf(values, isDaysHeader); idx != -1 {
			layout.DaysCol = idx
		}

		return layout, true
	}

	return Layout{}, false
}

func detectByPosition(grid Grid) (Layout, bool) {
	for i := 0; i < min(positionalScanRows, len(grid)); i++ {
		first := grid.At(i, 0)
		name := strings.TrimSpace(first.String())

		if missing(name) || numericName(first, name) {
			continue
		}

		dateCol := -1

		for j := 1; j < len(grid[i]); j++ {
			if looksLikeDate(grid[i][j]) {
				dateCol = j
				break
			}
		}

		if dateCol == -1 {
			continue
		}

		daysCol := 2

		for j := 1; j < dateCol; j++ {
			if n, ok := cellInt(grid[i][j]); ok && n >= 1 && n <= maxDurationDays {
				daysCol = j
				break
			}
		}

		return Layout{
			FullNameCol:     0,
			OrganizationCol: 1,
			DaysCol:         daysCol,
			StartDateCol:    dateCol,
			DataStartRow:    i,
			Method:          DetectedByPosition,
		}, true
	}

	return Layout{}, false
}

func looksLikeDate(c Cell) bool {
	if c.IsBlank() {
		return false
	}

	if c.Kind == CellDate {
		return true
	}

	s := strings.TrimSpace(c.String())

	return dottedDatePrefix.MatchString(s) || isoDatePrefix.MatchString(s)
}

func isNameHeader(v string) bool {
	return strings.Contains(v, "фио") ||
		strings.Contains(v, "фамили") ||
		strings.Contains(v, "сотрудник") ||
		strings.Contains(v, "full name") ||
		strings.Contains(v, "employee")
}

func isStartDateHeader(v string) bool {
	if v == "дата" || v == "date" {
		return true
	}

	if strings.Contains(v, "дата") &&
		(strings.Contains(v, "план") || strings.Contains(v, "начал") || strings.Contains(v, "запланир")) {
		return true
	}

	return strings.Contains(v, "start date")
}

func isDaysHeader(v string) bool {
	return (strings.Contains(v, "кол") && strings.Contains(v, "дн")) ||
		strings.Contains(v, "календарн") ||
		strings.Contains(v, "number of days")
}

func isOrganizationHeader(v string) bool {
	return strings.Contains(v, "организ") ||
		strings.Contains(v, "филиал") ||
		strings.Contains(v, "компани") ||
		strings.Contains(v, "organization") ||
		strings.Contains(v, "company")
}

func indexOf(values []string, match func(string) bool) int {
	for i, v := range values {
		if match(v) {
			return i
		}
	}

	return -1
}
