package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError pinpoints one rule violated by one record of the feed.
// Index is -1 when the problem concerns the feed as a whole.
type FieldError struct {
	Index  int
	Field  string
	Rule   string
	Detail string
}

func (e FieldError) String() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "[%d]", e.Index)
	}
	if e.Field != "" {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Field)
	}
	if e.Rule != "" {
		fmt.Fprintf(&b, " failed %s", e.Rule)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// ValidationError is returned when the feed does not conform to the record shape.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid data"
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return "invalid data: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(p FieldError) {
	e.Problems = append(e.Problems, p)
}

func (e *ValidationError) asError() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads a JSON array of records. Every element is decoded on its own so
// that a type mismatch in one record is reported with its index and does not
// hide problems in the others.
func Decode(r io.Reader) ([]RecordInput, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &ValidationError{Problems: []FieldError{{
			Index:  -1,
			Rule:   "array",
			Detail: err.Error(),
		}}}
	}

	var verr ValidationError
	inputs := make([]RecordInput, 0, len(raw))
	for i, msg := range raw {
		var in RecordInput
		if err := json.Unmarshal(msg, &in); err != nil {
			verr.add(decodeProblem(i, err))
			continue
		}
		if problems := tokenProblems(i, msg); len(problems) > 0 {
			verr.Problems = append(verr.Problems, problems...)
			continue
		}
		inputs = append(inputs, in)
	}
	if err := verr.asError(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// recordTokens exposes the raw tokens of the fields whose decoders accept more
// than the record shape allows: decimal.Decimal takes quoted numbers and
// pointers take null.
type recordTokens struct {
	Amount   json.RawMessage            `json:"amount"`
	Metadata map[string]json.RawMessage `json:"metadata"`
}

func tokenProblems(index int, msg json.RawMessage) []FieldError {
	var tokens recordTokens
	if err := json.Unmarshal(msg, &tokens); err != nil {
		return nil
	}

	var problems []FieldError
	if kind := tokenKind(tokens.Amount); kind != "" && kind != "number" && kind != "null" {
		problems = append(problems, FieldError{
			Index:  index,
			Field:  "amount",
			Rule:   "type",
			Detail: "got " + kind + ", want number",
		})
	}
	for _, field := range []string{"relatedTransactionId", "deviceId"} {
		if raw, ok := tokens.Metadata[field]; ok && tokenKind(raw) == "null" {
			problems = append(problems, FieldError{
				Index:  index,
				Field:  "metadata." + field,
				Rule:   "type",
				Detail: "got null, omit the field instead",
			})
		}
	}
	return problems
}

// tokenKind names the JSON type of a raw value, or "" when it is absent.
func tokenKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func decodeProblem(index int, err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return FieldError{
			Index:  index,
			Field:  typeErr.Field,
			Rule:   "type",
			Detail: fmt.Sprintf("got %s, want %s", typeErr.Value, typeErr.Type),
		}
	}
	return FieldError{Index: index, Rule: "decode", Detail: err.Error()}
}

// validateInputs checks every record against the shape rules and the
// store-wide uniqueness of transaction ids, collecting all problems.
func validateInputs(inputs []RecordInput) error {
	var verr ValidationError
	seen := make(map[int64]int, len(inputs))

	for i, in := range inputs {
		if err := validate.Struct(in); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				verr.add(FieldError{Index: i, Rule: "validate", Detail: err.Error()})
				continue
			}
			for _, fe := range fieldErrs {
				rule := fe.Tag()
				if fe.Param() != "" {
					rule += "=" + fe.Param()
				}
				verr.add(FieldError{
					Index: i,
					Field: trimNamespace(fe.Namespace()),
					Rule:  rule,
				})
			}
			continue
		}

		id := *in.TransactionID
		if first, dup := seen[id]; dup {
			verr.add(FieldError{
				Index:  i,
				Field:  "transactionId",
				Rule:   "unique",
				Detail: fmt.Sprintf("%d already used by record %d", id, first),
			})
			continue
		}
		seen[id] = i
	}

	return verr.asError()
}

// trimNamespace drops the leading struct name from a validator namespace.
func trimNamespace(ns string) string {
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}
