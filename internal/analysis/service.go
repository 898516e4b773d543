package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"survey-registry/internal/state"
)

var (
	// ErrEmptyTable is returned when a file has no header row.
	ErrEmptyTable = errors.New("table has no header row")
	// ErrDecoding is returned when a file is not valid UTF-8.
	ErrDecoding = errors.New("source is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVService struct{}

func NewCSVService() *CSVService {
	return &CSVService{}
}

// ReadFile loads a survey export from disk. The file handle is released
// before returning.
func (s *CSVService) ReadFile(filePath string) (*state.DataFrame, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	df, err := s.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	df.FilePath = filePath
	df.FileName = filepath.Base(filePath)
	return df, nil
}

// Parse reads CSV content into a DataFrame. Rows made only of separators or
// whitespace are dropped, including any before the header.
func (s *CSVService) Parse(data []byte) (*state.DataFrame, error) {
	if !utf8.Valid(data) {
		return nil, ErrDecoding
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	records, err := readRecords(data, ',')
	if errors.Is(err, ErrEmptyTable) {
		return nil, err
	}
	if err != nil || looksSemicolonSeparated(records) {
		// Spreadsheet exports from some locales use ';'
		records, err = readRecords(data, ';')
		if err != nil {
			return nil, err
		}
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &state.DataFrame{
		Headers: headers,
		Rows:    records[1:],
	}, nil
}

func readRecords(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.LazyQuotes = true    // Allow bare quotes in non-quoted fields
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Try to continue on malformed rows
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	return records, nil
}

// isBlankRecord reports rows made only of separators or whitespace, whichever
// separator the row was split on.
func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.Trim(cell, " \t\r\n,;") != "" {
			return false
		}
	}
	return true
}

func looksSemicolonSeparated(records [][]string) bool {
	return len(records) > 0 && len(records[0]) == 1 && strings.Contains(records[0][0], ";")
}
