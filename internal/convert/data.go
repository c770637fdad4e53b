package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fileforge/internal/fileutil"
	"fileforge/internal/services"
)

// DataConverter performs the in-process structural transforms between JSON,
// CSV, and XML. YAML and XLSX are catalog members of the data category but
// have no in-process transform; they yield a conversion failure.
type DataConverter struct{}

func NewDataConverter() *DataConverter {
	return &DataConverter{}
}

func (d *DataConverter) Name() string { return "data" }

func (d *DataConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if req.InputFormat == req.OutputFormat {
		if err := fileutil.CopyFile(req.InputPath, outputPath); err != nil {
			return nil, services.Wrap(services.ErrConversion, "data", "copy", "copy passthrough output", err)
		}
		return collectSingle(outputPath, req.OutputFormat)
	}

	data, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "data", "read", "read input", err)
	}

	var out []byte
	switch req.InputFormat + ">" + req.OutputFormat {
	case "json>csv":
		out, err = jsonToCSV(data)
	case "csv>json":
		out, err = csvToJSON(data)
	case "json>xml":
		out, err = jsonToXML(data)
	case "csv>xml":
		var intermediate []byte
		if intermediate, err = csvToJSON(data); err == nil {
			out, err = jsonToXML(intermediate)
		}
	default:
		return nil, services.Wrap(services.ErrConversion, "data", "convert",
			fmt.Sprintf("no transform from %s to %s", req.InputFormat, req.OutputFormat), nil)
	}
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return nil, services.Wrap(services.ErrConversion, "data", "write", "write output", err)
	}
	return collectSingle(outputPath, req.OutputFormat)
}

func collectSingle(path, format string) ([]Artifact, error) {
	artifact, err := artifactFor(path, format)
	if err != nil {
		return nil, err
	}
	return []Artifact{artifact}, nil
}

// jsonToCSV renders a JSON array of objects as CSV. The header row is the
// first element's keys in document order; rows missing a key render the
// field empty; nested values are not flattened, they pass through as their
// JSON text.
func jsonToCSV(data []byte) ([]byte, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv", "input is not a JSON array of objects", err)
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv", "input array is empty", nil)
	}

	headers, err := firstObjectKeys(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		row := make([]string, len(headers))
		for i, header := range headers {
			value, ok := record[header]
			if !ok || value == nil {
				continue
			}
			row[i] = stringifyValue(value)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// firstObjectKeys streams the document tokens to recover the first
// element's key order, which json.Unmarshal into a map discards.
func firstObjectKeys(data []byte) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	// consume '[' then '{'
	for _, want := range []json.Delim{'[', '{'} {
		token, err := decoder.Token()
		if err != nil {
			return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv", "scan header keys", err)
		}
		delim, ok := token.(json.Delim)
		if !ok || delim != want {
			return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv",
				"first array element must be an object", nil)
		}
	}

	var keys []string
	depth := 0
	expectKey := true
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv", "scan header keys", err)
		}
		if delim, ok := token.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				if depth == 0 {
					return keys, nil
				}
				depth--
			}
			continue
		}
		if depth == 0 && expectKey {
			key, ok := token.(string)
			if !ok {
				return nil, services.Wrap(services.ErrConversion, "data", "json-to-csv", "unexpected token scanning keys", nil)
			}
			keys = append(keys, key)
			expectKey = false
			// the next token is this key's value
			if err := skipValue(decoder); err != nil {
				return nil, err
			}
			expectKey = true
		}
	}
}

func skipValue(decoder *json.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return services.Wrap(services.ErrConversion, "data", "json-to-csv", "scan header keys", err)
	}
	delim, ok := token.(json.Delim)
	if !ok {
		return nil
	}
	if delim == '{' || delim == '[' {
		depth := 1
		for depth > 0 {
			token, err := decoder.Token()
			if err != nil {
				return services.Wrap(services.ErrConversion, "data", "json-to-csv", "scan header keys", err)
			}
			if d, ok := token.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// render integers without a trailing .0
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// csvToJSON renders CSV as a JSON array of flat string objects. The first
// line defines headers, every value stays a string, and each field is
// trimmed of surrounding whitespace.
func csvToJSON(data []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "data", "csv-to-json", "parse csv", err)
	}
	if len(rows) < 1 {
		return nil, services.Wrap(services.ErrConversion, "data", "csv-to-json", "csv has no header row", nil)
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = strings.TrimSpace(row[i])
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return out, nil
}

// jsonToXML renders arbitrary JSON as XML. Object keys become tags, array
// values unroll as repeated sibling elements sharing the array's key name,
// and scalar leaves render as <key>value</key>. Object keys are emitted in
// sorted order for deterministic output.
func jsonToXML(data []byte) ([]byte, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, services.Wrap(services.ErrConversion, "data", "json-to-xml", "parse json", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<root>")
	if err := writeXMLValue(&buf, "item", root); err != nil {
		return nil, err
	}
	buf.WriteString("</root>\n")
	return buf.Bytes(), nil
}

func writeXMLValue(buf *bytes.Buffer, key string, value any) error {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tag := xmlTag(k)
			if nested, ok := v[k].([]any); ok {
				if err := writeXMLValue(buf, tag, nested); err != nil {
					return err
				}
				continue
			}
			buf.WriteString("<" + tag + ">")
			if err := writeXMLValue(buf, tag, v[k]); err != nil {
				return err
			}
			buf.WriteString("</" + tag + ">")
		}
	case []any:
		for _, element := range v {
			buf.WriteString("<" + key + ">")
			if err := writeXMLValue(buf, key, element); err != nil {
				return err
			}
			buf.WriteString("</" + key + ">")
		}
	case nil:
	default:
		if err := xml.EscapeText(buf, []byte(stringifyValue(v))); err != nil {
			return fmt.Errorf("escape xml text: %w", err)
		}
	}
	return nil
}

// xmlTag sanitizes a JSON key into a usable element name.
func xmlTag(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "field"
	}
	var b strings.Builder
	for i, r := range key {
		valid := r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
