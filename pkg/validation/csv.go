package validation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// ReadCSVRequest builds a request from a CSV table: the header row names the
// fields and each column becomes that field's value list. Every data row is
// one record. Blank and missing cells are kept as "" so the columns stay
// aligned, and the request is marked AlignedRows.
func ReadCSVRequest(r io.Reader) (*models.AnalysisRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	req := &models.AnalysisRequest{
		Fields:      make([]models.FieldSpec, len(header)),
		Values:      make(map[string][]string, len(header)),
		AlignedRows: true,
	}
	for i, name := range header {
		id := strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		req.Fields[i] = models.FieldSpec{FieldID: id, DisplayName: id}
		req.Values[id] = []string{}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("csv line %d has %d columns, header declares %d", line, len(record), len(header))
		}
		for i, f := range req.Fields {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			req.Values[f.FieldID] = append(req.Values[f.FieldID], cell)
		}
	}

	return req, nil
}

// LoadAndValidateCSV reads a CSV table from disk and validates the request it
// describes
func LoadAndValidateCSV(filePath string) (*models.AnalysisRequest, error) {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".csv" {
		return nil, fmt.Errorf("csv input must have a .csv extension, got: %q", ext)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	req, err := ReadCSVRequest(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file %s: %w", filePath, err)
	}

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}
