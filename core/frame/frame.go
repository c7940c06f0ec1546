package frame

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/parquet-go/parquet-go"
)

// Frame is the tabular in-memory representation of a dataset.
type Frame = dataframe.DataFrame

// ErrUnsupportedFormat reports a filename suffix outside the supported set
// (.parquet, .csv, .json).
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Parse interprets a raw payload based on the filename suffix.
//
// JSON payloads are tried as line-delimited records first, falling back to a
// whole-document array. The dispatch looks only at the suffix, never at the
// content.
func Parse(data []byte, filename string) (Frame, error) {
	name := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(name, ".parquet"):
		return parseParquet(data)
	case strings.HasSuffix(name, ".csv"):
		df := dataframe.ReadCSV(bytes.NewReader(data))
		if df.Err != nil {
			return Frame{}, fmt.Errorf("parsing %q as CSV: %w", filename, df.Err)
		}
		return df, nil
	case strings.HasSuffix(name, ".json"):
		if df, err := parseJSONLines(data); err == nil {
			return df, nil
		}
		df := dataframe.ReadJSON(bytes.NewReader(data))
		if df.Err != nil {
			return Frame{}, fmt.Errorf("parsing %q as JSON: %w", filename, df.Err)
		}
		return df, nil
	}

	return Frame{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// parseJSONLines decodes newline-delimited JSON records.
func parseJSONLines(data []byte) (Frame, error) {
	var records []map[string]any

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			return Frame{}, err
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return Frame{}, err
	}
	if len(records) == 0 {
		return Frame{}, errors.New("no JSON records")
	}

	df := dataframe.LoadMaps(records)
	if df.Err != nil {
		return Frame{}, df.Err
	}
	return df, nil
}

// parseParquet decodes a columnar-binary payload by walking the file's row
// groups and flattening each row into a record keyed by leaf column name.
func parseParquet(data []byte) (Frame, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Frame{}, fmt.Errorf("opening parquet payload: %w", err)
	}

	fields := file.Schema().Fields()
	var records []map[string]any

	for _, group := range file.RowGroups() {
		rows := group.Rows()
		buf := make([]parquet.Row, 256)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				record := make(map[string]any, len(fields))
				for _, value := range row {
					record[fields[value.Column()].Name()] = goValue(value)
				}
				records = append(records, record)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				rows.Close()
				return Frame{}, fmt.Errorf("reading parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return Frame{}, fmt.Errorf("reading parquet rows: %w", err)
		}
	}

	if len(records) == 0 {
		return Frame{}, nil
	}

	df := dataframe.LoadMaps(records)
	if df.Err != nil {
		return Frame{}, df.Err
	}
	return df, nil
}

// goValue converts a parquet value to its natural Go representation.
func goValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int(v.Int32())
	case parquet.Int64:
		return int(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
