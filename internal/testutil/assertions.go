// Package testutil provides test helpers for the auditor.
package testutil

import (
	"math"
	"reflect"
	"strings"
)

// TestingT is the subset of testing.T the assertions need.
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
	Helper()
}

// Assertion provides fluent assertion helpers.
type Assertion struct {
	t       TestingT
	subject interface{}
	name    string
}

// Assert creates a new assertion on subject.
func Assert(t TestingT, subject interface{}) *Assertion {
	return &Assertion{t: t, subject: subject}
}

// Named sets a name reported with failures.
func (a *Assertion) Named(name string) *Assertion {
	a.name = name
	return a
}

func (a *Assertion) fail(msg string, args ...interface{}) {
	a.t.Helper()
	prefix := ""
	if a.name != "" {
		prefix = a.name + ": "
	}
	a.t.Errorf(prefix+msg, args...)
}

// IsNil asserts that the subject is nil.
func (a *Assertion) IsNil() *Assertion {
	a.t.Helper()
	if a.subject != nil {
		val := reflect.ValueOf(a.subject)
		if !val.IsNil() {
			a.fail("expected nil, got %v", a.subject)
		}
	}
	return a
}

// IsNotNil asserts that the subject is not nil.
func (a *Assertion) IsNotNil() *Assertion {
	a.t.Helper()
	if a.subject == nil {
		a.fail("expected non-nil value")
		return a
	}
	val := reflect.ValueOf(a.subject)
	if val.Kind() == reflect.Ptr && val.IsNil() {
		a.fail("expected non-nil value")
	}
	return a
}

// Equals asserts deep equality with expected.
func (a *Assertion) Equals(expected interface{}) *Assertion {
	a.t.Helper()
	if !reflect.DeepEqual(a.subject, expected) {
		a.fail("expected %v, got %v", expected, a.subject)
	}
	return a
}

// NotEquals asserts the subject differs from expected.
func (a *Assertion) NotEquals(expected interface{}) *Assertion {
	a.t.Helper()
	if reflect.DeepEqual(a.subject, expected) {
		a.fail("expected value different from %v", expected)
	}
	return a
}

// IsTrue asserts that the subject is true.
func (a *Assertion) IsTrue() *Assertion {
	a.t.Helper()
	if b, ok := a.subject.(bool); !ok || !b {
		a.fail("expected true, got %v", a.subject)
	}
	return a
}

// IsFalse asserts that the subject is false.
func (a *Assertion) IsFalse() *Assertion {
	a.t.Helper()
	if b, ok := a.subject.(bool); !ok || b {
		a.fail("expected false, got %v", a.subject)
	}
	return a
}

// Contains asserts that the subject string contains substr.
func (a *Assertion) Contains(substr string) *Assertion {
	a.t.Helper()
	s, ok := a.subject.(string)
	if !ok {
		a.fail("expected string, got %T", a.subject)
		return a
	}
	if !strings.Contains(s, substr) {
		a.fail("expected '%s' to contain '%s'", s, substr)
	}
	return a
}

// HasLength asserts that the subject has the expected length.
func (a *Assertion) HasLength(expected int) *Assertion {
	a.t.Helper()
	val := reflect.ValueOf(a.subject)
	switch val.Kind() {
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		if val.Len() != expected {
			a.fail("expected length %d, got %d", expected, val.Len())
		}
	default:
		a.fail("cannot get length of %T", a.subject)
	}
	return a
}

// IsEmpty asserts that the subject has length zero.
func (a *Assertion) IsEmpty() *Assertion {
	a.t.Helper()
	return a.HasLength(0)
}

// IsNotEmpty asserts that the subject has nonzero length.
func (a *Assertion) IsNotEmpty() *Assertion {
	a.t.Helper()
	val := reflect.ValueOf(a.subject)
	switch val.Kind() {
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		if val.Len() == 0 {
			a.fail("expected non-empty %T", a.subject)
		}
	default:
		a.fail("cannot check emptiness of %T", a.subject)
	}
	return a
}

// IsGreaterThan asserts the numeric subject exceeds expected.
func (a *Assertion) IsGreaterThan(expected float64) *Assertion {
	a.t.Helper()
	val, ok := toFloat(a.subject)
	if !ok {
		a.fail("expected numeric type, got %T", a.subject)
		return a
	}
	if val <= expected {
		a.fail("expected %v to be greater than %v", val, expected)
	}
	return a
}

// IsLessThan asserts the numeric subject is below expected.
func (a *Assertion) IsLessThan(expected float64) *Assertion {
	a.t.Helper()
	val, ok := toFloat(a.subject)
	if !ok {
		a.fail("expected numeric type, got %T", a.subject)
		return a
	}
	if val >= expected {
		a.fail("expected %v to be less than %v", val, expected)
	}
	return a
}

// IsBetween asserts the numeric subject lies in [min, max].
func (a *Assertion) IsBetween(min, max float64) *Assertion {
	a.t.Helper()
	val, ok := toFloat(a.subject)
	if !ok {
		a.fail("expected numeric type, got %T", a.subject)
		return a
	}
	if val < min || val > max {
		a.fail("expected %v to be between %v and %v", val, min, max)
	}
	return a
}

// IsCloseTo asserts the numeric subject is within tolerance of expected.
func (a *Assertion) IsCloseTo(expected, tolerance float64) *Assertion {
	a.t.Helper()
	val, ok := toFloat(a.subject)
	if !ok {
		a.fail("expected numeric type, got %T", a.subject)
		return a
	}
	if math.Abs(val-expected) > tolerance {
		a.fail("expected %v to be within %v of %v", val, tolerance, expected)
	}
	return a
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// ErrorAssertion provides error-specific assertions.
type ErrorAssertion struct {
	*Assertion
	err error
}

// AssertError creates an error assertion.
func AssertError(t TestingT, err error) *ErrorAssertion {
	return &ErrorAssertion{
		Assertion: Assert(t, err),
		err:       err,
	}
}

// IsNoError asserts there is no error.
func (e *ErrorAssertion) IsNoError() *ErrorAssertion {
	e.t.Helper()
	if e.err != nil {
		e.fail("expected no error, got %v", e.err)
	}
	return e
}

// HasError asserts there is an error.
func (e *ErrorAssertion) HasError() *ErrorAssertion {
	e.t.Helper()
	if e.err == nil {
		e.fail("expected an error")
	}
	return e
}

// ContainsMessage asserts the error message contains the substring.
func (e *ErrorAssertion) ContainsMessage(substr string) *ErrorAssertion {
	e.t.Helper()
	if e.err == nil {
		e.fail("expected an error containing '%s'", substr)
		return e
	}
	if !strings.Contains(e.err.Error(), substr) {
		e.fail("expected error to contain '%s', got '%s'", substr, e.err.Error())
	}
	return e
}

// MustNotFail stops the test on error.
func MustNotFail(t TestingT, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
		t.FailNow()
	}
}

// MustFail stops the test when no error occurred.
func MustFail(t TestingT, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected error but got none")
		t.FailNow()
	}
}
