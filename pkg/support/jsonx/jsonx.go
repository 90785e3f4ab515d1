// Package jsonx wraps encoding/json with typed errors, so callers that talk
// to provider APIs can tell a malformed payload apart from other failures.
package jsonx

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type ParseError struct {
	Input string
	Cause error
}

func (e *ParseError) Error() string {
	return "could not parse JSON: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

type StringifyError struct {
	Cause error
}

func (e *StringifyError) Error() string {
	return "could not stringify value to JSON: " + e.Cause.Error()
}

func (e *StringifyError) Unwrap() error {
	return e.Cause
}

// Parse decodes data into v.
func Parse(data string, v interface{}) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return &ParseError{Input: data, Cause: err}
	}
	return nil
}

// ParseMap decodes a JSON object.
func ParseMap(data string) (map[string]interface{}, error) {
	ret := map[string]interface{}{}
	if err := Parse(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Stringify encodes v as compact JSON.
func Stringify(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &StringifyError{Cause: err}
	}
	return string(b), nil
}

// StringifyIndent encodes v as indented JSON.
func StringifyIndent(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &StringifyError{Cause: err}
	}
	return string(b), nil
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func IsStringifyError(err error) bool {
	var se *StringifyError
	return errors.As(err, &se)
}
