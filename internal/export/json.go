package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter exports rows as a pretty-printed JSON array of objects,
// keeping field order
type JSONExporter struct{}

// Export exports rows to JSON format
func (e *JSONExporter) Export(rows []Row, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, f := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Label)
			if err != nil {
				return fmt.Errorf("failed to encode label: %w", err)
			}
			val, err := json.Marshal(f.Value)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", f.Label, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
