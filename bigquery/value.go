// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bigquery

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	bq "google.golang.org/api/bigquery/v2"
)

// Value stores the contents of a single cell from a BigQuery result.
//
// The concrete type of a non-null Value depends on its column type:
//
//	STRING, GEOGRAPHY, JSON  string
//	BYTES                    *bytes.Reader
//	INTEGER                  int64
//	FLOAT                    float64
//	BOOLEAN                  bool
//	TIMESTAMP                time.Time, in UTC
//	DATE                     civil.Date
//	TIME                     civil.Time
//	DATETIME                 civil.DateTime
//	NUMERIC, BIGNUMERIC      *big.Rat
//	RECORD                   Row
//
// A repeated column decodes to a []Value of the element type. A null cell
// decodes to nil.
type Value interface{}

// Row is a decoded row, keyed by column name. It holds exactly one entry for
// every field of the schema it was decoded with.
type Row map[string]Value

func convertRows(rows []*bq.TableRow, schema Schema) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		row, err := convertRow(r, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func convertRow(r *bq.TableRow, schema Schema) (Row, error) {
	var cells []*bq.TableCell
	if r != nil {
		cells = r.F
	}
	return convertCells(cells, schema, "")
}

func convertCells(cells []*bq.TableCell, schema Schema, path string) (Row, error) {
	if len(cells) != len(schema) {
		return nil, &DecodeError{
			Path: path,
			Type: RecordFieldType,
			Raw:  len(cells),
			Err:  fmt.Errorf("got %d cells for %d fields", len(cells), len(schema)),
		}
	}
	row := make(Row, len(schema))
	for i, fs := range schema {
		var raw interface{}
		if cells[i] != nil {
			raw = cells[i].V
		}
		v, err := convertValue(raw, fs, joinPath(path, fs.Name))
		if err != nil {
			return nil, err
		}
		row[fs.Name] = v
	}
	return row, nil
}

func convertValue(val interface{}, fs *FieldSchema, path string) (Value, error) {
	if val == nil {
		return nil, nil
	}
	if !fs.Repeated {
		return convertSingle(val, fs, path)
	}
	entries, ok := val.([]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Type: fs.Type, Raw: val, Err: errors.New("repeated field is not a list")}
	}
	return convertRepeated(entries, fs, path)
}

// convertRepeated decodes a list of {"v": value} entries, preserving order.
func convertRepeated(entries []interface{}, fs *FieldSchema, path string) ([]Value, error) {
	values := make([]Value, 0, len(entries))
	for i, e := range entries {
		p := fmt.Sprintf("%s[%d]", path, i)
		m, ok := e.(map[string]interface{})
		if !ok {
			return nil, &DecodeError{Path: p, Type: fs.Type, Raw: e, Err: errors.New(`repeated entry is not a {"v": ...} cell`)}
		}
		v, err := convertSingle(m["v"], fs, p)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func convertSingle(val interface{}, fs *FieldSchema, path string) (Value, error) {
	if val == nil {
		return nil, nil
	}
	typ := fs.Type.normalize()
	switch v := val.(type) {
	case map[string]interface{}:
		if typ != RecordFieldType {
			return nil, &DecodeError{Path: path, Type: typ, Raw: val, Err: errors.New("got a record")}
		}
		return convertNested(v, fs.Schema, path)
	case string:
		if typ == RecordFieldType {
			return nil, &DecodeError{Path: path, Type: typ, Raw: val, Err: errors.New("got a scalar")}
		}
		out, err := convertBasicType(v, typ)
		if err != nil {
			return nil, &DecodeError{Path: path, Type: typ, Raw: val, Err: err}
		}
		return out, nil
	default:
		return nil, &DecodeError{Path: path, Type: typ, Raw: val, Err: fmt.Errorf("unexpected %T", val)}
	}
}

// convertNested decodes a record cell, {"f": [{"v": ...}, ...]}, with the
// record's own schema.
func convertNested(val map[string]interface{}, schema Schema, path string) (Row, error) {
	f, ok := val["f"].([]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Type: RecordFieldType, Raw: val, Err: errors.New(`record has no "f" list`)}
	}
	cells := make([]*bq.TableCell, len(f))
	for i, c := range f {
		m, ok := c.(map[string]interface{})
		if !ok {
			return nil, &DecodeError{Path: path, Type: RecordFieldType, Raw: c, Err: errors.New(`record entry is not a {"v": ...} cell`)}
		}
		cells[i] = &bq.TableCell{V: m["v"]}
	}
	return convertCells(cells, schema, path)
}

func convertBasicType(val string, typ FieldType) (Value, error) {
	switch typ {
	case StringFieldType, GeographyFieldType, JSONFieldType:
		return val, nil
	case BytesFieldType:
		b, err := base64.StdEncoding.DecodeString(val)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	case IntegerFieldType:
		return strconv.ParseInt(val, 10, 64)
	case FloatFieldType:
		return strconv.ParseFloat(val, 64)
	case BooleanFieldType:
		return parseBool(val)
	case TimestampFieldType:
		return parseTimestamp(val)
	case DateFieldType:
		return civil.ParseDate(val)
	case TimeFieldType:
		return civil.ParseTime(val)
	case DateTimeFieldType:
		return civil.ParseDateTime(strings.Replace(val, " ", "T", 1))
	case NumericFieldType, BigNumericFieldType:
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, errors.New("not a decimal number")
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unrecognized type %q", string(typ))
	}
}

func parseBool(s string) (bool, error) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, errors.New("not true or false")
}

var (
	microsPerSecond  = big.NewRat(1_000_000, 1)
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999 MST",
	}
)

// parseTimestamp accepts seconds since the Unix epoch, in decimal or
// scientific notation as the REST API emits them, or an RFC 3339 timestamp.
// Precision beyond microseconds is truncated.
func parseTimestamp(s string) (time.Time, error) {
	if r, ok := new(big.Rat).SetString(s); ok {
		r.Mul(r, microsPerSecond)
		micros := new(big.Int).Quo(r.Num(), r.Denom())
		if !micros.IsInt64() {
			return time.Time{}, errors.New("timestamp out of range")
		}
		return time.UnixMicro(micros.Int64()).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("neither epoch seconds nor an RFC 3339 timestamp")
}
