package roster

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-faster/errors"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

// Day-first formats tried in order before the generic parser.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2006-1-2",
	"2.1.06",
	"2/1/2006",
}

func parseStartDate(c Cell) (models.Date, error) {
	if c.Kind == CellDate {
		return models.DateOf(c.Time), nil
	}

	s := strings.TrimSpace(c.String())

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), nil
		}
	}

	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return models.Date{}, errors.Wrapf(err, "не удалось распознать дату %q", s)
	}

	return models.DateOf(t), nil
}

// parseDays accepts integers and floats, truncating toward zero. Anything else is 0.
func parseDays(c Cell) int {
	if c.IsBlank() {
		return 0
	}

	if n, ok := cellInt(c); ok {
		return max(n, 0)
	}

	return 0
}

func cellInt(c Cell) (int, bool) {
	var f float64

	switch c.Kind {
	case CellNumber:
		f = c.Number
	case CellText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0, false
		}

		f = v
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return int(f), true
}
