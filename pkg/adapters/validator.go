package adapters

import "fmt"

// AuditEventSchema identifies the audit event schema handed to a Validator.
const AuditEventSchema = "audit/audit_event.schema.json"

// Validator checks a raw item against a named schema before it becomes a
// domain record. A failing item is logged and skipped.
type Validator interface {
	Validate(schema string, item map[string]any) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(schema string, item map[string]any) error

// Validate calls f.
func (f ValidatorFunc) Validate(schema string, item map[string]any) error {
	return f(schema, item)
}

// RequiredFields returns a Validator that rejects items missing any of fields.
func RequiredFields(fields ...string) Validator {
	return ValidatorFunc(func(schema string, item map[string]any) error {
		for _, f := range fields {
			if _, ok := item[f]; !ok {
				return fmt.Errorf("%s: missing required field %q", schema, f)
			}
		}
		return nil
	})
}
