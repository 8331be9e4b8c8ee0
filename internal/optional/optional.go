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

// Package optional provides versions of primitive types that can
// be nil. These are useful in option structs where a field must be
// sent to the backend only when the caller supplied it, zero values included.
package optional

import (
	"fmt"
	"strings"
)

type (
	// Bool is either a bool or nil.
	Bool interface{}

	// String is either a string or nil.
	String interface{}

	// Int is either an int or nil.
	Int interface{}
)

// ToBool returns its argument as a bool.
// It panics if its argument is nil or not a bool.
func ToBool(v Bool) bool {
	x, ok := v.(bool)
	if !ok {
		doPanic("Bool", v)
	}
	return x
}

// ToString returns its argument as a string.
// It panics if its argument is nil or not a string.
func ToString(v String) string {
	x, ok := v.(string)
	if !ok {
		doPanic("String", v)
	}
	return x
}

// ToInt returns its argument as an int.
// It panics if its argument is nil or not an int.
func ToInt(v Int) int {
	x, ok := v.(int)
	if !ok {
		doPanic("Int", v)
	}
	return x
}

// Check reports an error instead of panicking when v is non-nil and does not
// hold a value of the kind named by capType ("Bool", "String" or "Int").
func Check(capType string, v interface{}) error {
	if v == nil {
		return nil
	}
	var ok bool
	switch capType {
	case "Bool":
		_, ok = v.(bool)
	case "String":
		_, ok = v.(string)
	case "Int":
		_, ok = v.(int)
	default:
		return fmt.Errorf("optional: unknown type %q", capType)
	}
	if !ok {
		return fmt.Errorf("optional.%s value should be %s, got %T", capType, strings.ToLower(capType), v)
	}
	return nil
}

func doPanic(capType string, v interface{}) {
	panic(fmt.Sprintf("optional.%s value should be %s, got %T", capType, strings.ToLower(capType), v))
}
