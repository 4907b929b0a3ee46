package schema

import (
	"encoding/json"
	"fmt"
)

// Schema error codes (E100-E199)
const (
	ErrNotArray     = "E100" // top-level value is not a JSON array
	ErrEmptyPayload = "E101" // payload is empty in a mode that requires festivals
	ErrMissingField = "E102" // required field absent or not text/array typed
)

// Mode selects how strictly the top level is checked.
type Mode int

const (
	// AllowEmpty accepts an empty festival array. This is the base contract:
	// empty is schema-valid, and the page layer separately requires the
	// empty-state notice for it.
	AllowEmpty Mode = iota

	// RequireFestivals additionally rejects an empty array. Used on the
	// healthy path, where the endpoint must return at least one festival.
	RequireFestivals
)

// FieldError is a single schema violation, tagged with the path to the
// offending element.
type FieldError struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	loc := e.Field
	if e.Path != "" {
		if loc != "" {
			loc = e.Path + "." + loc
		} else {
			loc = e.Path
		}
	}
	if loc == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, loc, e.Message)
}

// Result is the outcome of a schema validation.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Validate checks a raw payload body against the structural contract.
//
// Top-level gates short-circuit: a body that is not a JSON array (including
// bodies that do not parse at all) stops at E100, an empty array in
// RequireFestivals mode stops at E101. Past the gates, per-element checks
// accumulate so one run surfaces every violation. A bands value that is not
// an array is reported once and not descended into.
func Validate(raw []byte, mode Mode) Result {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(FieldError{
			Code:    ErrNotArray,
			Message: "payload is not valid JSON",
		})
	}

	arr, ok := doc.([]any)
	if !ok {
		return invalid(FieldError{
			Code:    ErrNotArray,
			Message: fmt.Sprintf("payload must be a JSON array, got %s", jsonKind(doc)),
		})
	}

	if mode == RequireFestivals && len(arr) == 0 {
		return invalid(FieldError{
			Code:    ErrEmptyPayload,
			Message: "payload must contain at least one festival",
		})
	}

	var errs []FieldError
	for i, elem := range arr {
		path := fmt.Sprintf("festivals[%d]", i)

		obj, ok := elem.(map[string]any)
		if !ok {
			// A non-object element has neither required key.
			errs = append(errs,
				missing(path, "name"),
				missing(path, "bands"),
			)
			continue
		}

		errs = append(errs, checkText(obj, path, "name")...)

		rawBands, present := obj["bands"]
		if !present {
			errs = append(errs, missing(path, "bands"))
			continue
		}
		bands, ok := rawBands.([]any)
		if !ok {
			errs = append(errs, FieldError{
				Code:    ErrMissingField,
				Path:    path,
				Field:   "bands",
				Message: fmt.Sprintf("bands must be an array, got %s", jsonKind(rawBands)),
			})
			continue
		}

		for j, b := range bands {
			bandPath := fmt.Sprintf("%s.bands[%d]", path, j)

			bandObj, ok := b.(map[string]any)
			if !ok {
				errs = append(errs,
					missing(bandPath, "name"),
					missing(bandPath, "recordLabel"),
				)
				continue
			}

			errs = append(errs, checkText(bandObj, bandPath, "name")...)
			errs = append(errs, checkText(bandObj, bandPath, "recordLabel")...)
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// checkText verifies that a field is present and string-typed. An empty
// string passes: emptiness belongs to the fallback rule, not the schema.
func checkText(obj map[string]any, path, field string) []FieldError {
	v, present := obj[field]
	if !present {
		return []FieldError{missing(path, field)}
	}
	if _, ok := v.(string); !ok {
		return []FieldError{{
			Code:    ErrMissingField,
			Path:    path,
			Field:   field,
			Message: fmt.Sprintf("%s must be a string, got %s", field, jsonKind(v)),
		}}
	}
	return nil
}

func missing(path, field string) FieldError {
	return FieldError{
		Code:    ErrMissingField,
		Path:    path,
		Field:   field,
		Message: field + " is required",
	}
}

func invalid(errs ...FieldError) Result {
	return Result{Valid: false, Errors: errs}
}

// jsonKind names the JSON type of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
