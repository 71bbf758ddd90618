package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// ToJSON serializes table as records or columns.
func ToJSON(table *models.ExamTable, format Format, pretty bool) ([]byte, error) {
	switch format {
	case FormatRecords:
		records := table.Records()
		out := make([]ordered[any], len(records))
		for i, rec := range records {
			out[i] = ordered[any]{names: models.ExamColumns, values: rec}
		}
		return marshal(out, pretty)
	case FormatColumns:
		return marshal(ordered[[]any]{names: models.ExamColumns, values: table.Columns()}, pretty)
	default:
		return nil, fmt.Errorf("format %s is not JSON", format)
	}
}

// ReportsToJSON serializes several tables as one object keyed by name.
func ReportsToJSON(tables map[string]*models.ExamTable, format Format, pretty bool) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(tables))
	for name, table := range tables {
		data, err := ToJSON(table, format, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = data
	}
	return marshal(out, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ordered encodes values as a JSON object whose keys follow names.
type ordered[V any] struct {
	names  []string
	values map[string]V
}

func (o ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(o.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
