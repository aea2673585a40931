// Package export renders coach reports as spreadsheets.
package export

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/multicco/sportbot4-sub000/core/telegram/format"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

const (
	sheetSessions = "Sessions"
	sheetSummary  = "Summary"
	timeLayout    = "2006-01-02 15:04"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

var sessionColumns = []struct {
	title string
	width float64
}{
	{"Player", 24},
	{"Jersey", 8},
	{"Position", 14},
	{"Workout", 28},
	{"Status", 14},
	{"RPE", 8},
	{"Duration, min", 14},
	{"Completed at", 18},
}

// FileName builds a download name such as "falcons-report.xlsx".
func FileName(team domain.Team) string {
	base := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(team.Name), "-"), "-")
	if base == "" {
		base = fmt.Sprintf("team-%d", team.ID)
	}
	return base + "-report.xlsx"
}

// TeamReport renders one row per player and session plus a per-player summary.
// Players without sessions appear once with empty session columns.
func TeamReport(team domain.Team, rows []storage.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSessions); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	titles := make([]any, len(sessionColumns))
	for i, c := range sessionColumns {
		titles[i] = c.title
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetSessions, col, col, c.width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}
	if err := writeRow(f, sheetSessions, 1, titles); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(sessionColumns), 1)
	if err := f.SetCellStyle(sheetSessions, "A1", last, header); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, r := range rows {
		if err := writeRow(f, sheetSessions, i+2, sessionRow(r)); err != nil {
			return nil, err
		}
	}

	if err := writeSummary(f, team, rows, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sessionRow(r storage.ReportRow) []any {
	out := []any{
		r.PlayerName,
		"",
		format.Deref(r.Position, ""),
		format.Deref(r.WorkoutName, ""),
		format.Deref(r.Status, ""),
		"",
		"",
		"",
	}
	if r.JerseyNumber != nil {
		out[1] = *r.JerseyNumber
	}
	if r.RPE != nil {
		out[5] = *r.RPE
	}
	if r.Duration != nil {
		out[6] = format.Deref(r.Duration, 0)
	}
	if r.CompletedAt != nil {
		out[7] = r.CompletedAt.UTC().Format(timeLayout)
	}
	return out
}

type playerTotals struct {
	name      string
	assigned  int
	completed int
	rpeSum    float64
	rpeCount  int
	minutes   int
}

func writeSummary(f *excelize.File, team domain.Team, rows []storage.ReportRow, header int) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeRow(f, sheetSummary, 1, []any{"Team", team.Name}); err != nil {
		return err
	}
	titles := []any{"Player", "Assigned", "Completed", "Avg RPE", "Minutes"}
	if err := writeRow(f, sheetSummary, 3, titles); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A3", "E3", header); err != nil {
		return fmt.Errorf("summary style: %w", err)
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 24); err != nil {
		return fmt.Errorf("summary width: %w", err)
	}

	var order []string
	totals := map[string]*playerTotals{}
	for _, r := range rows {
		p, ok := totals[r.PlayerName]
		if !ok {
			p = &playerTotals{name: r.PlayerName}
			totals[r.PlayerName] = p
			order = append(order, r.PlayerName)
		}
		if r.Status == nil {
			continue
		}
		p.assigned++
		if *r.Status == string(domain.SessionCompleted) {
			p.completed++
		}
		if r.RPE != nil {
			p.rpeSum += *r.RPE
			p.rpeCount++
		}
		p.minutes += format.Deref(r.Duration, 0)
	}

	for i, name := range order {
		p := totals[name]
		avg := any("")
		if p.rpeCount > 0 {
			avg = math.Round(p.rpeSum/float64(p.rpeCount)*10) / 10
		}
		if err := writeRow(f, sheetSummary, i+4, []any{p.name, p.assigned, p.completed, avg, p.minutes}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
