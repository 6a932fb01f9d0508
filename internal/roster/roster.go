package roster

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"certgen/certificate-backend/internal/certificate"
)

var (
	// ErrUnsupportedFormat is returned for files that are not csv, xlsx or json.
	ErrUnsupportedFormat = errors.New("unsupported roster format")
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing roster column")
	// ErrEmptyRoster is returned when a roster holds no records.
	ErrEmptyRoster = errors.New("roster has no records")
)

// Columns are the header names recognised in a roster, in the order used by
// WriteTemplate.
var Columns = []string{
	"course_title",
	"course_sub",
	"name",
	"value",
	"date",
	"ceo_signature",
	"ceo_name",
	"ceo_title",
	"logo_position",
	"template",
}

var requiredColumns = []string{"course_title", "name"}

// RowError reports a record that could not be used. Row is 1-based and
// counts the header row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Read loads certificate requests from a .csv, .xlsx or .json roster.
func Read(path string) ([]certificate.Request, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open roster: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open roster: %w", err)
		}
		defer f.Close()
		return readWorkbook(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open roster: %w", err)
		}
		defer f.Close()
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supported reports whether Read understands the file extension of path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".json":
		return true
	}
	return false
}

// ReadCSV parses a comma separated roster with a header row.
func ReadCSV(r io.Reader) ([]certificate.Request, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv roster: %w", err)
	}
	return fromRows(rows)
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]certificate.Request, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]certificate.Request, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyRoster
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// ReadJSON parses an array of request objects.
func ReadJSON(r io.Reader) ([]certificate.Request, error) {
	var reqs []certificate.Request
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("failed to parse json roster: %w", err)
	}
	if len(reqs) == 0 {
		return nil, ErrEmptyRoster
	}
	for i, req := range reqs {
		if err := req.Normalize().Validate(); err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
	}
	return reqs, nil
}

func fromRows(rows [][]string) ([]certificate.Request, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	index := make(map[string]int)
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var reqs []certificate.Request
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		req := certificate.Request{
			CourseTitle:    cell("course_title"),
			CourseSubtitle: cell("course_sub"),
			RecipientName:  cell("name"),
			BodyText:       cell("value"),
			Date:           cell("date"),
			SignatureImage: cell("ceo_signature"),
			IssuerName:     cell("ceo_name"),
			IssuerTitle:    cell("ceo_title"),
			LogoPlacement:  certificate.LogoPlacement(cell("logo_position")),
			Template:       cell("template"),
		}
		if err := req.Normalize().Validate(); err != nil {
			return nil, &RowError{Row: n + 2, Err: err}
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return nil, ErrEmptyRoster
	}
	return reqs, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate writes an empty workbook holding only the styled header row,
// for issuers to fill in.
func WriteTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Roster"
	f.SetSheetName("Sheet1", sheet)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"0D2344"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save roster template: %w", err)
	}
	return nil
}
