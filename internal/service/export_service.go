package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"daily-report/internal/repository"
)

const exportSheet = "task_log"

var exportHeaders = []string{
	"log_date", "employee", "department", "task_category", "task_name",
	"minutes", "channel", "priority", "status", "note",
}

// ExportService writes task_log rows to a spreadsheet.
type ExportService struct {
	logs *repository.TaskLogRepository
}

func NewExportService(logs *repository.TaskLogRepository) *ExportService {
	return &ExportService{logs: logs}
}

// WriteXLSX writes entries with from <= log_date <= to (empty bounds are open)
// to w and returns how many rows were exported.
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer, from, to string) (int, error) {
	entries, err := s.logs.Range(ctx, from, to)
	if err != nil {
		return 0, &DataAccessError{Op: "load reports", Err: err}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return 0, fmt.Errorf("set header: %w", err)
		}
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	for r, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &[]any{
			e.LogDate, e.Employee, e.Department, e.TaskCategory, e.TaskName,
			e.Minutes, e.Channel, e.Priority, e.Status, e.Note,
		}); err != nil {
			return 0, fmt.Errorf("set row %d: %w", r+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(entries), nil
}
