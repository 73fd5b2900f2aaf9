package export

import (
	"encoding/csv"
	"io"
)

// CSVExporter exports rows as CSV with a header line
type CSVExporter struct{}

// Export writes the header from the first row's labels, then one line per row
func (e *CSVExporter) Export(rows []Row, w io.Writer) error {
	cw := csv.NewWriter(w)
	if header := labels(rows); header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, f := range row {
			record[i] = formatValue(f.Value)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
