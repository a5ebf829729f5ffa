package roster

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

var formattedDate = regexp.MustCompile(`^\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`)

// ReadXLSX decodes the first worksheet of a workbook into a Grid.
// Cells stored as Excel serial dates become date cells.
func ReadXLSX(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Grid{}, nil
	}

	formatted, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read raw sheet %q", sheets[0])
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	grid := make(Grid, len(formatted))

	for i, row := range formatted {
		cells := make([]Cell, len(row))

		for j, value := range row {
			rawValue := value
			if i < len(raw) && j < len(raw[i]) {
				rawValue = raw[i][j]
			}

			cells[j] = decodeCell(value, rawValue, date1904)
		}

		grid[i] = cells
	}

	return grid, nil
}

func decodeCell(formattedValue, rawValue string, date1904 bool) Cell {
	if strings.TrimSpace(formattedValue) == "" {
		return Blank()
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
	if err != nil {
		return Text(formattedValue)
	}

	if formattedValue != rawValue && formattedDate.MatchString(strings.TrimSpace(formattedValue)) {
		if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
			return DateValue(t)
		}
	}

	if formattedValue == rawValue {
		return Number(serial)
	}

	c := Number(serial)
	c.Text = formattedValue

	return c
}
