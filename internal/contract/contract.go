// Package contract turns untrusted generator text into validated records.
//
// Every stage's generator output passes through Parse. A response that cannot
// be decoded, is not a JSON object, lacks a required key or fails struct
// validation is reported as a *Violation; no default is ever substituted.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const fence = "```"

// ErrContractViolation matches any *Violation via errors.Is.
var ErrContractViolation = errors.New("contract violation")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Violation reports generator output that broke the stage's contract.
type Violation struct {
	Stage   string
	Reason  string
	Excerpt string
	Err     error
}

func (v *Violation) Error() string {
	msg := fmt.Sprintf("contract violation in %s: %s", v.Stage, v.Reason)
	if v.Err != nil {
		msg += ": " + v.Err.Error()
	}
	return msg
}

func (v *Violation) Unwrap() error { return v.Err }

func (v *Violation) Is(target error) bool { return target == ErrContractViolation }

// StripFence removes a code fence wrapping the response. When the trimmed text
// starts with a fence marker, the first line and everything from the last
// fence marker onward are dropped.
func StripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, fence) {
		return t
	}
	nl := strings.IndexByte(t, '\n')
	if nl < 0 {
		return ""
	}
	t = t[nl+1:]
	if end := strings.LastIndex(t, fence); end >= 0 {
		t = t[:end]
	}
	return strings.TrimSpace(t)
}

// Record is a decoded top-level JSON object awaiting conversion into its
// persisted type.
type Record struct {
	stage  string
	raw    string
	fields map[string]json.RawMessage
}

// Parse strips an incidental fence, decodes the object and checks that every
// required key is present.
func Parse(stage, text string, required ...string) (*Record, error) {
	body := StripFence(text)
	if body == "" {
		return nil, &Violation{Stage: stage, Reason: "empty response", Excerpt: excerpt(text)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, &Violation{Stage: stage, Reason: "response is not a JSON object", Excerpt: excerpt(body), Err: err}
	}
	if fields == nil {
		return nil, &Violation{Stage: stage, Reason: "response is null", Excerpt: excerpt(body)}
	}

	var missing []string
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &Violation{
			Stage:   stage,
			Reason:  "missing required keys " + strings.Join(missing, ", "),
			Excerpt: excerpt(body),
		}
	}

	return &Record{stage: stage, raw: body, fields: fields}, nil
}

// Has reports whether key is still in the record.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// TakeBool pops key from the record and returns its boolean value. A missing
// key yields false; a non-boolean value is a violation.
func (r *Record) TakeBool(key string) (bool, error) {
	raw, ok := r.fields[key]
	if !ok {
		return false, nil
	}
	delete(r.fields, key)
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, &Violation{Stage: r.stage, Reason: fmt.Sprintf("%q is not a boolean", key), Excerpt: excerpt(string(raw)), Err: err}
	}
	return v, nil
}

// Decode converts the remaining fields into v and runs struct validation when v
// points to a struct.
func (r *Record) Decode(v any) error {
	buf, err := json.Marshal(r.fields)
	if err != nil {
		return &Violation{Stage: r.stage, Reason: "re-encode record", Err: err}
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return &Violation{Stage: r.stage, Reason: "record does not match expected shape", Excerpt: excerpt(r.raw), Err: err}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct {
		if err := validate.Struct(v); err != nil {
			return &Violation{Stage: r.stage, Reason: "record failed validation", Excerpt: excerpt(r.raw), Err: err}
		}
	}
	return nil
}

// Field decodes a single key into v.
func (r *Record) Field(key string, v any) error {
	raw, ok := r.fields[key]
	if !ok {
		return &Violation{Stage: r.stage, Reason: fmt.Sprintf("missing key %q", key)}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Violation{Stage: r.stage, Reason: fmt.Sprintf("key %q does not match expected shape", key), Excerpt: excerpt(string(raw)), Err: err}
	}
	return nil
}

// Decode parses text and decodes it straight into T.
func Decode[T any](stage, text string, required ...string) (T, error) {
	var out T
	rec, err := Parse(stage, text, required...)
	if err != nil {
		return out, err
	}
	if err := rec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func excerpt(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
