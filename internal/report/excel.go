package report

import (
	"context"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	stepsSheet   = "Steps"
	seedingSheet = "Seeding"
)

var (
	stepsHeader   = []interface{}{"Resource", "Step", "Result", "Status", "Duration (ms)", "Detail"}
	seedingHeader = []interface{}{"Resource", "Requested", "Created", "Failed", "Skipped"}
)

// WriteWorkbook saves the report as an xlsx file with one sheet for test steps and one
// for seeding. Failed rows are highlighted.
func (r *Report) WriteWorkbook(ctx context.Context, fileName string) error {
	contextLogger := log.WithContext(ctx)

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), stepsSheet)
	f.NewSheet(seedingSheet)
	for _, w := range []struct {
		sheet, from, to string
		width           float64
	}{
		{stepsSheet, "A", "B", 20},
		{stepsSheet, "F", "F", 60},
		{seedingSheet, "A", "A", 20},
	} {
		if err := f.SetColWidth(w.sheet, w.from, w.to, w.width); err != nil {
			contextLogger.WithError(err).Errorf("Unable to set column width")
			return err
		}
	}

	failedStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "#FF0000", Family: "Liberation Serif"}})
	if err != nil {
		contextLogger.WithError(err).Errorf("Unable to create row style")
		return err
	}

	if err := f.SetSheetRow(stepsSheet, "A1", &stepsHeader); err != nil {
		return err
	}
	for i, s := range r.Steps {
		cell := "A" + strconv.Itoa(i+2)
		result := "PASS"
		if !s.Passed {
			result = "FAIL"
		}
		row := []interface{}{s.Resource, s.Step, result, s.StatusCode, s.Duration.Milliseconds(), s.Detail}
		if err := f.SetSheetRow(stepsSheet, cell, &row); err != nil {
			contextLogger.WithError(err).Errorf("Unable to write step row")
			return err
		}
		if !s.Passed {
			if err := f.SetCellStyle(stepsSheet, cell, "F"+strconv.Itoa(i+2), failedStyle); err != nil {
				contextLogger.WithError(err).Errorf("Unable to set cell style")
				return err
			}
		}
	}

	if err := f.SetSheetRow(seedingSheet, "A1", &seedingHeader); err != nil {
		return err
	}
	for i, s := range r.Seeds {
		cell := "A" + strconv.Itoa(i+2)
		row := []interface{}{s.Resource, s.Requested, s.Created, s.Failed, s.Skipped}
		if err := f.SetSheetRow(seedingSheet, cell, &row); err != nil {
			contextLogger.WithError(err).Errorf("Unable to write seeding row")
			return err
		}
		if s.Failed > 0 || s.Skipped {
			if err := f.SetCellStyle(seedingSheet, cell, "E"+strconv.Itoa(i+2), failedStyle); err != nil {
				contextLogger.WithError(err).Errorf("Unable to set cell style")
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(fileName); err != nil {
		contextLogger.WithError(err).Errorf("Unable to save report workbook")
		return err
	}
	return nil
}
