package chat

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// UnknownErrorText is recorded when an adapter fails without a usable message.
const UnknownErrorText = "An unknown error occurred"

// ErrorText returns the text recorded for an adapter failure.
func ErrorText(err error) string {
	if isNil(err) {
		return UnknownErrorText
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorText
}

func classifyPanic(v interface{}) string {
	if err, ok := v.(error); ok {
		return ErrorText(err)
	}
	return UnknownErrorText
}

// isNil catches typed nil pointers stored in an error interface, which would
// otherwise panic when Error() dereferences the receiver.
func isNil(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// ProviderError is the normalized form provider adapters use for failures
// reported by a model API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}

	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.StatusCode != 0 {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	b.WriteString(msg)

	if e.StatusCode != 0 {
		b.WriteString(fmt.Sprintf(" (status %d", e.StatusCode))
		if e.Code != "" {
			b.WriteString(", code ")
			b.WriteString(e.Code)
		}
		b.WriteString(")")
	}

	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AsProviderError returns the first ProviderError in err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
