package roster

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

// RowError describes a data row that looked like a record but could not be converted.
type RowError struct {
	Row    int
	Reason string
	Name   string
}

type Result struct {
	Records []models.VacationRecord
	Errors  []RowError
}

// Extract converts data rows below the layout's start row. Rows without a usable name or
// start date are skipped silently; a row that fails conversion is reported and does not
// abort the remaining rows.
func Extract(grid Grid, layout Layout) Result {
	var result Result

	for i := layout.DataStartRow; i < len(grid); i++ {
		nameCell := grid.At(i, layout.FullNameCol)
		name := strings.TrimSpace(nameCell.String())

		if missing(name) || numericName(nameCell, name) {
			continue
		}

		dateCell := grid.At(i, layout.StartDateCol)
		if dateCell.IsBlank() || missing(strings.TrimSpace(dateCell.String())) {
			continue
		}

		record, err := convertRow(grid, i, layout, name)
		if err != nil {
			result.Errors = append(result.Errors, RowError{
				Row:    i + 1,
				Reason: err.Error(),
				Name:   name,
			})

			continue
		}

		result.Records = append(result.Records, record)
	}

	return result
}

func convertRow(grid Grid, row int, layout Layout, name string) (record models.VacationRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ошибка обработки строки: %v", r)
		}
	}()

	org := strings.TrimSpace(grid.At(row, layout.OrganizationCol).String())
	if missing(org) {
		org = ""
	}

	start, err := parseStartDate(grid.At(row, layout.StartDateCol))
	if err != nil {
		return models.VacationRecord{}, err
	}

	days := parseDays(grid.At(row, layout.DaysCol))

	return models.NewVacationRecord(name, org, days, start), nil
}

// Parse detects the layout and extracts records. Extraction never runs when detection fails.
func Parse(grid Grid) (Result, Layout, error) {
	layout, err := DetectLayout(grid)
	if err != nil {
		return Result{}, Layout{}, errors.Wrap(err, "detect layout")
	}

	return Extract(grid, layout), layout, nil
}
