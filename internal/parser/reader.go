package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// ReadWorkbook decodes the first sheet of an uploaded CSV, XLS or XLSX file.
// Blank rows are kept; only the header row is consumed.
func ReadWorkbook(r io.Reader, filename string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Reason: "failed to read upload", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Filename: filename, Reason: "file is empty"}
	}

	var sheet *Sheet
	switch DetectFormat(filename, data) {
	case FormatXLSX:
		sheet, err = readXLSX(data)
	case FormatXLS:
		sheet, err = readXLS(data)
	default:
		sheet, err = readCSV(data)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Filename = filename
			return nil, pe
		}
		return nil, &ParseError{Filename: filename, Reason: "unsupported spreadsheet", Err: err}
	}

	if len(sheet.Rows) == 0 {
		return nil, &ParseError{Filename: filename, Reason: "worksheet has no data rows"}
	}
	return sheet, nil
}

// DetectFormat picks the decoder by extension, then by content signature
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	}
	return FormatCSV
}

// readXLSX reads raw cell values so numbers and date serials keep their type
func readXLSX(data []byte) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, &ParseError{Reason: "no worksheet found"}
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ParseError{Reason: "worksheet is empty"}
	}
	start, ok := headerRow(rows)
	if !ok {
		return nil, &ParseError{Reason: "no header row"}
	}

	sheet := &Sheet{Name: sheetName, Format: FormatXLSX, Headers: trimHeaders(rows[start])}
	columns := headerColumns(sheet.Headers)

	for i, values := range rows[start+1:] {
		rowNum := start + i + 2
		raw := make(RawRow, len(columns))
		for _, col := range columns {
			value := ""
			if col.index < len(values) {
				value = values[col.index]
			}
			if value == "" {
				raw[col.key] = Empty()
				continue
			}
			axis, err := excelize.CoordinatesToCellName(col.index+1, rowNum)
			if err != nil {
				raw[col.key] = Text(value)
				continue
			}
			cellType, err := file.GetCellType(sheetName, axis)
			if err != nil {
				cellType = excelize.CellTypeUnset
			}
			raw[col.key] = xlsxCell(cellType, value)
		}
		sheet.Rows = append(sheet.Rows, raw)
	}

	return sheet, nil
}

func xlsxCell(cellType excelize.CellType, value string) Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeBool, excelize.CellTypeError:
		return Text(value)
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return Number(v)
	}
	return Text(value)
}

// readXLS reads the first sheet of a legacy BIFF workbook
func readXLS(data []byte) (sheet *Sheet, err error) {
	// the BIFF decoder panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, &ParseError{Reason: fmt.Sprintf("corrupt xls workbook: %v", r)}
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, &ParseError{Reason: "no worksheet found"}
	}

	ws := workbook.GetSheet(0)
	if ws == nil {
		return nil, &ParseError{Reason: "no worksheet found"}
	}

	var grid [][]string
	width := 0
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		// cells written without a ROW record report no last column
		if row.LastCol() > width {
			width = row.LastCol()
		}
		values := make([]string, width)
		for j := range values {
			values[j] = row.Col(j)
		}
		grid = append(grid, values)
	}
	if len(grid) == 0 {
		return nil, &ParseError{Reason: "worksheet is empty"}
	}

	sheet = &Sheet{Name: ws.Name, Format: FormatXLS}
	sheet.Headers, sheet.Rows, err = buildRows(grid, sniffCell)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// xlsRow returns nil for rows the workbook never wrote
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// readCSV reads comma or semicolon separated text; every cell stays textual
func readCSV(data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, &ParseError{Reason: "worksheet is empty"}
	}

	sheet := &Sheet{Name: "csv", Format: FormatCSV}
	sheet.Headers, sheet.Rows, err = buildRows(grid, textCell)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func textCell(value string) Cell {
	if value == "" {
		return Empty()
	}
	return Text(value)
}

func sniffCell(value string) Cell {
	if value == "" {
		return Empty()
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return Number(v)
	}
	return Text(value)
}

// buildRows takes the first non-empty row as the header; blank rows after it are kept
func buildRows(grid [][]string, cell func(string) Cell) ([]string, []RawRow, error) {
	start, ok := headerRow(grid)
	if !ok {
		return nil, nil, &ParseError{Reason: "no header row"}
	}
	headers := trimHeaders(grid[start])
	columns := headerColumns(headers)

	rows := make([]RawRow, 0, len(grid)-start-1)
	for _, values := range grid[start+1:] {
		raw := make(RawRow, len(columns))
		for _, col := range columns {
			value := ""
			if col.index < len(values) {
				value = values[col.index]
			}
			raw[col.key] = cell(value)
		}
		rows = append(rows, raw)
	}
	return headers, rows, nil
}

// headerRow index of the first row holding any non-blank value
func headerRow(grid [][]string) (int, bool) {
	for i, values := range grid {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return i, true
			}
		}
	}
	return 0, false
}

type headerColumn struct {
	index int
	key   string
}

// headerColumns skips unnamed columns; a repeated header keeps its first column
func headerColumns(headers []string) []headerColumn {
	seen := make(map[string]bool, len(headers))
	columns := make([]headerColumn, 0, len(headers))
	for i, h := range headers {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		columns = append(columns, headerColumn{index: i, key: h})
	}
	return columns
}

func trimHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
