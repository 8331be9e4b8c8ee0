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
	"path"
	"strings"

	"github.com/bqkit/gcloud/internal/optional"
	bq "google.golang.org/api/bigquery/v2"
)

// DataFormat describes the format of BigQuery table data.
type DataFormat string

// Constants describing the format of BigQuery table data.
const (
	CSV             DataFormat = "CSV"
	Avro            DataFormat = "AVRO"
	JSON            DataFormat = "NEWLINE_DELIMITED_JSON"
	DatastoreBackup DataFormat = "DATASTORE_BACKUP"
	Parquet         DataFormat = "PARQUET"
	ORC             DataFormat = "ORC"
)

// Short names accepted in place of the wire tokens, matched case-insensitively.
var dataFormatNames = map[string]DataFormat{
	"csv":                    CSV,
	"avro":                   Avro,
	"json":                   JSON,
	"newline_delimited_json": JSON,
	"datastore":              DatastoreBackup,
	"datastore_backup":       DatastoreBackup,
	"backup":                 DatastoreBackup,
	"parquet":                Parquet,
	"orc":                    ORC,
}

var extensionFormats = map[string]DataFormat{
	".csv":         CSV,
	".json":        JSON,
	".avro":        Avro,
	".backup_info": DatastoreBackup,
	".parquet":     Parquet,
	".orc":         ORC,
}

// normalize returns the wire token for f. The empty format stays empty.
func (f DataFormat) normalize() (DataFormat, error) {
	if f == "" {
		return "", nil
	}
	if df, ok := dataFormatNames[strings.ToLower(strings.TrimSpace(string(f)))]; ok {
		return df, nil
	}
	return "", &ConfigValidationError{Field: "SourceFormat", Value: string(f), Reason: "unknown data format"}
}

// inferDataFormat derives a format from the extension of uri, or returns ""
// if the extension is not recognized.
func inferDataFormat(uri string) DataFormat {
	return extensionFormats[strings.ToLower(path.Ext(uri))]
}

// Encoding specifies the character encoding of data to be loaded into BigQuery.
// See https://cloud.google.com/bigquery/docs/reference/v2/jobs#configuration.load.encoding
// for more details about how this is used.
type Encoding string

const (
	// UTF_8 specifies the UTF-8 encoding type.
	UTF_8 Encoding = "UTF-8"
	// ISO_8859_1 specifies the ISO-8859-1 encoding type.
	ISO_8859_1 Encoding = "ISO-8859-1"
)

// FileConfig contains configuration options that pertain to files, typically
// text files that require interpretation to be used as a BigQuery table.
type FileConfig struct {
	// SourceFormat is the format of the data to be read. When empty, it is
	// inferred from the extension of the first source URI; if that is not
	// recognized, the backend default (CSV) applies.
	SourceFormat DataFormat

	// Indicates if we should automatically infer the options and
	// schema for CSV and JSON sources.
	AutoDetect bool

	// Schema describes the data. It is required when reading CSV or JSON data,
	// unless the data is being loaded into a table that already exists.
	Schema Schema

	// Additional options for CSV files.
	CSVOptions
}

// CSVOptions are additional options for CSV files. A nil field is left to
// the backend default; a set field is sent even when it holds a zero value.
type CSVOptions struct {
	// AllowJaggedRows causes missing trailing optional columns to be tolerated
	// when reading CSV data. Missing values are treated as nulls.
	AllowJaggedRows optional.Bool

	// AllowQuotedNewlines sets whether quoted data sections containing
	// newlines are allowed when reading CSV data.
	AllowQuotedNewlines optional.Bool

	// Encoding is the character encoding of data to be read.
	Encoding Encoding

	// FieldDelimiter is the separator for fields in a CSV file, used when
	// reading or exporting data. The default is ",".
	FieldDelimiter optional.String

	// IgnoreUnknownValues causes values not matching the schema to be
	// tolerated. Unknown values are ignored.
	IgnoreUnknownValues optional.Bool

	// MaxBadRecords is the maximum number of bad records that will be ignored
	// when reading data.
	MaxBadRecords optional.Int

	// Quote is the value used to quote data sections in a CSV file. An empty
	// string means no character is interpreted as a quotation character.
	Quote optional.String

	// The number of rows at the top of a CSV file that BigQuery will skip when
	// reading data.
	SkipLeadingRows optional.Int
}

func (o *CSVOptions) populateLoadConfig(conf *bq.JobConfigurationLoad) error {
	checks := []struct {
		field   string
		v       interface{}
		capType string
	}{
		{"AllowJaggedRows", o.AllowJaggedRows, "Bool"},
		{"AllowQuotedNewlines", o.AllowQuotedNewlines, "Bool"},
		{"FieldDelimiter", o.FieldDelimiter, "String"},
		{"IgnoreUnknownValues", o.IgnoreUnknownValues, "Bool"},
		{"MaxBadRecords", o.MaxBadRecords, "Int"},
		{"Quote", o.Quote, "String"},
		{"SkipLeadingRows", o.SkipLeadingRows, "Int"},
	}
	for _, c := range checks {
		if c.v == nil {
			continue
		}
		if err := optional.Check(c.capType, c.v); err != nil {
			return &ConfigValidationError{Field: c.field, Value: c.v, Reason: err.Error()}
		}
	}
	forceSend := func(field string) {
		conf.ForceSendFields = append(conf.ForceSendFields, field)
	}
	if o.AllowJaggedRows != nil {
		conf.AllowJaggedRows = optional.ToBool(o.AllowJaggedRows)
		forceSend("AllowJaggedRows")
	}
	if o.AllowQuotedNewlines != nil {
		conf.AllowQuotedNewlines = optional.ToBool(o.AllowQuotedNewlines)
		forceSend("AllowQuotedNewlines")
	}
	if o.Encoding != "" {
		conf.Encoding = string(o.Encoding)
	}
	if o.FieldDelimiter != nil {
		conf.FieldDelimiter = optional.ToString(o.FieldDelimiter)
		forceSend("FieldDelimiter")
	}
	if o.IgnoreUnknownValues != nil {
		conf.IgnoreUnknownValues = optional.ToBool(o.IgnoreUnknownValues)
		forceSend("IgnoreUnknownValues")
	}
	if o.MaxBadRecords != nil {
		n := optional.ToInt(o.MaxBadRecords)
		if n < 0 {
			return &ConfigValidationError{Field: "MaxBadRecords", Value: n, Reason: "must not be negative"}
		}
		conf.MaxBadRecords = int64(n)
		forceSend("MaxBadRecords")
	}
	if o.Quote != nil {
		q := optional.ToString(o.Quote)
		conf.Quote = &q
	}
	if o.SkipLeadingRows != nil {
		n := optional.ToInt(o.SkipLeadingRows)
		if n < 0 {
			return &ConfigValidationError{Field: "SkipLeadingRows", Value: n, Reason: "must not be negative"}
		}
		conf.SkipLeadingRows = int64(n)
		forceSend("SkipLeadingRows")
	}
	return nil
}
