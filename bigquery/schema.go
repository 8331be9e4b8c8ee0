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
	"fmt"
	"strings"

	bq "google.golang.org/api/bigquery/v2"
)

// FieldType is the type of a column. Legacy and standard SQL spellings of the
// same type are normalized to the names below.
type FieldType string

const (
	// StringFieldType is a string field type.
	StringFieldType FieldType = "STRING"
	// BytesFieldType is a bytes field type.
	BytesFieldType FieldType = "BYTES"
	// IntegerFieldType is a integer field type.
	IntegerFieldType FieldType = "INTEGER"
	// FloatFieldType is a float field type.
	FloatFieldType FieldType = "FLOAT"
	// BooleanFieldType is a boolean field type.
	BooleanFieldType FieldType = "BOOLEAN"
	// TimestampFieldType is a timestamp field type.
	TimestampFieldType FieldType = "TIMESTAMP"
	// RecordFieldType is a record field type. It is typically used to create
	// columns with repeated or nested data.
	RecordFieldType FieldType = "RECORD"
	// DateFieldType is a date field type.
	DateFieldType FieldType = "DATE"
	// TimeFieldType is a time field type.
	TimeFieldType FieldType = "TIME"
	// DateTimeFieldType is a datetime field type.
	DateTimeFieldType FieldType = "DATETIME"
	// NumericFieldType is a numeric field type. Numeric types include integer
	// types, floating point types and the NUMERIC data type.
	NumericFieldType FieldType = "NUMERIC"
	// BigNumericFieldType is a numeric field type that supports values of
	// larger precision and scale than the NUMERIC field type.
	BigNumericFieldType FieldType = "BIGNUMERIC"
	// GeographyFieldType is a string field type. Geography types represent a
	// set of points on the Earth's surface, represented in Well Known Text
	// (WKT) format.
	GeographyFieldType FieldType = "GEOGRAPHY"
	// JSONFieldType is a JSON field type.
	JSONFieldType FieldType = "JSON"
)

var fieldTypeAliases = map[string]FieldType{
	"INT64":      IntegerFieldType,
	"FLOAT64":    FloatFieldType,
	"BOOL":       BooleanFieldType,
	"STRUCT":     RecordFieldType,
	"DECIMAL":    NumericFieldType,
	"BIGDECIMAL": BigNumericFieldType,
}

// normalize maps an alias such as INT64 or struct to its canonical name.
// Unrecognized names are returned upper-cased; decoding a non-null value of
// such a type fails with a DecodeError.
func (ft FieldType) normalize() FieldType {
	up := FieldType(strings.ToUpper(strings.TrimSpace(string(ft))))
	if alias, ok := fieldTypeAliases[string(up)]; ok {
		return alias
	}
	return up
}

// FieldSchema describes a single column.
type FieldSchema struct {
	// The field name.
	// Must contain only letters (a-z, A-Z), numbers (0-9), or underscores (_),
	// and must start with a letter or underscore.
	// The maximum length is 128 characters.
	Name string

	// A description of the field. The maximum length is 16,384 characters.
	Description string

	// Whether the field may contain multiple values.
	Repeated bool
	// Whether the field is required. Ignored if Repeated is true.
	Required bool

	// The field data type. If Type is Record, then this field contains a
	// nested schema, which is described by Schema.
	Type FieldType

	// Describes the nested schema if Type is set to Record.
	Schema Schema
}

// Schema describes the fields in a table or query result.
type Schema []*FieldSchema

func (fs *FieldSchema) toBQ() *bq.TableFieldSchema {
	tfs := &bq.TableFieldSchema{
		Name:        fs.Name,
		Description: fs.Description,
		Type:        string(fs.Type),
	}
	switch {
	case fs.Repeated:
		tfs.Mode = "REPEATED"
	case fs.Required:
		tfs.Mode = "REQUIRED"
	}
	for _, f := range fs.Schema {
		tfs.Fields = append(tfs.Fields, f.toBQ())
	}
	return tfs
}

func (s Schema) toBQ() *bq.TableSchema {
	var fields []*bq.TableFieldSchema
	for _, f := range s {
		fields = append(fields, f.toBQ())
	}
	return &bq.TableSchema{Fields: fields}
}

func bqToFieldSchema(tfs *bq.TableFieldSchema) *FieldSchema {
	fs := &FieldSchema{
		Name:        tfs.Name,
		Description: tfs.Description,
		Repeated:    tfs.Mode == "REPEATED",
		Required:    tfs.Mode == "REQUIRED",
		Type:        FieldType(tfs.Type).normalize(),
	}
	for _, f := range tfs.Fields {
		fs.Schema = append(fs.Schema, bqToFieldSchema(f))
	}
	return fs
}

func bqToSchema(ts *bq.TableSchema) Schema {
	if ts == nil {
		return nil
	}
	var s Schema
	for _, f := range ts.Fields {
		s = append(s, bqToFieldSchema(f))
	}
	return s
}

// validate checks that every record field, and only record fields, carries a
// nested schema and that names are unique among siblings. BigQuery column
// names are case-insensitive.
func (s Schema) validate() error {
	return s.validateAt("")
}

func (s Schema) validateAt(prefix string) error {
	seen := make(map[string]bool, len(s))
	for _, f := range s {
		if f == nil {
			return fmt.Errorf("nil field in schema at %q", prefix)
		}
		if f.Name == "" {
			return fmt.Errorf("unnamed field in schema at %q", prefix)
		}
		path := joinPath(prefix, f.Name)
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("duplicate field %q", path)
		}
		seen[key] = true
		isRecord := f.Type.normalize() == RecordFieldType
		switch {
		case isRecord && len(f.Schema) == 0:
			return fmt.Errorf("record field %q has no nested schema", path)
		case !isRecord && len(f.Schema) > 0:
			return fmt.Errorf("%s field %q has a nested schema", f.Type, path)
		}
		if isRecord {
			if err := f.Schema.validateAt(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
