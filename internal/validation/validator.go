package validation

// Validator checks a decoded document, such as a settings file, before it
// is applied.
type Validator interface {
	Validate(doc map[string]any) error
}
