package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"daily-report/internal/model"
	"daily-report/internal/repository"
)

// ImportService loads reference data (employees, task categories) from CSV,
// XLSX or legacy XLS files.
type ImportService struct {
	lookups *repository.LookupRepository
}

func NewImportService(lookups *repository.LookupRepository) *ImportService {
	return &ImportService{lookups: lookups}
}

// ImportEmployees reads a sheet with an "employee" header column.
func (s *ImportService) ImportEmployees(ctx context.Context, r io.Reader, filename string) (int, error) {
	rows, err := readSpreadsheetRows(r, filepath.Ext(filename))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: worksheet is empty", filename)
	}
	idx := headerIndex(rows[0])
	col, ok := idx["employee"]
	if !ok {
		return 0, fmt.Errorf("%s: missing employee column", filename)
	}

	var names []string
	for _, row := range rows[1:] {
		names = append(names, cellValue(row, col))
	}
	return s.lookups.AddEmployees(ctx, names)
}

// ImportCategories reads a sheet with "task_category" and
// "task_category_group" header columns.
func (s *ImportService) ImportCategories(ctx context.Context, r io.Reader, filename string) (int, error) {
	rows, err := readSpreadsheetRows(r, filepath.Ext(filename))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%s: worksheet is empty", filename)
	}
	idx := headerIndex(rows[0])
	catCol, ok := idx["task_category"]
	if !ok {
		return 0, fmt.Errorf("%s: missing task_category column", filename)
	}
	groupCol, ok := idx["task_category_group"]
	if !ok {
		return 0, fmt.Errorf("%s: missing task_category_group column", filename)
	}

	var categories []model.TaskCategory
	for _, row := range rows[1:] {
		categories = append(categories, model.TaskCategory{
			Category: cellValue(row, catCol),
			Group:    cellValue(row, groupCol),
		})
	}
	return s.lookups.AddCategories(ctx, categories)
}

func readSpreadsheetRows(r io.Reader, ext string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	switch strings.ToLower(ext) {
	case ".csv", ".txt":
		reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		return rows, nil
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		return workbook.ReadAllCells(100000), nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		return file.GetRows(sheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
