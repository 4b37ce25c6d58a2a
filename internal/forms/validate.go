package forms

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError is one validation failure, attached to a field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors accumulates every failure of a submission so the
// wizard can annotate all fields in one round trip.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "valid"
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	telRe      = regexp.MustCompile(`^\+?[0-9][0-9 .()-]{5,19}$`)
	postcodeRe = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z -]{1,9}$`)
)

// Validate checks a submission against the schema and returns every
// failure. A nil result means the submission is acceptable.
func Validate(schema *FormSchema, values map[string]any) ValidationErrors {
	var errs ValidationErrors
	for _, group := range schema.Groups {
		for _, spec := range group.Fields {
			errs = append(errs, validateField(spec, values)...)
		}
	}
	return errs
}

func validateField(spec *FieldSpec, values map[string]any) ValidationErrors {
	var errs ValidationErrors
	fail := func(format string, args ...any) {
		errs = append(errs, FieldError{Field: spec.Name, Message: fmt.Sprintf(format, args...)})
	}

	value := values[spec.Name]
	if spec.Required && isEmpty(value) {
		fail("ce champ est obligatoire")
		return errs
	}
	if isEmpty(value) {
		return errs
	}

	switch spec.Widget {
	case WidgetCheckbox:
		if _, ok := value.(bool); !ok {
			fail("valeur invalide")
		}
	case WidgetEmail:
		if s, ok := value.(string); !ok || !emailRe.MatchString(s) {
			fail("adresse email invalide")
		}
	case WidgetTel:
		if s, ok := value.(string); !ok || !telRe.MatchString(s) {
			fail("numéro de téléphone invalide")
		}
	case WidgetPostcode:
		if s, ok := value.(string); !ok || !postcodeRe.MatchString(s) {
			fail("code postal invalide")
		}
	case WidgetURL:
		if s, ok := value.(string); !ok || !validURL(s) {
			fail("URL invalide")
		}
	case WidgetText, WidgetTextarea:
		s, ok := value.(string)
		if !ok {
			fail("valeur invalide")
			break
		}
		if spec.MaxLength > 0 && utf8.RuneCountInString(s) > spec.MaxLength {
			fail("dépasse %d caractères", spec.MaxLength)
		}
	case WidgetSelect, WidgetMultiSelect:
		errs = append(errs, checkMembership(spec, value)...)
	case WidgetDualSelect:
		errs = append(errs, checkMembership(spec, value)...)
		errs = append(errs, checkDualDetail(spec, value, values[spec.DetailName()])...)
	case WidgetCountry:
		errs = append(errs, checkMembership(spec, value)...)
	}
	return errs
}

// checkMembership enforces the closed list of a select field. Free list
// variants accept anything.
func checkMembership(spec *FieldSpec, value any) ValidationErrors {
	if spec.AllowFree || len(spec.Choices) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(spec.Choices))
	for _, e := range spec.Choices {
		allowed[e.Value] = true
	}
	var errs ValidationErrors
	for _, v := range asStrings(value) {
		if !allowed[v] {
			errs = append(errs, FieldError{Field: spec.Name, Message: "choix hors liste: " + v})
		}
	}
	return errs
}

// checkDualDetail enforces that each selected child belongs to one of
// the selected parents.
func checkDualDetail(spec *FieldSpec, parents, details any) ValidationErrors {
	if len(spec.Choices2) == 0 {
		return nil
	}
	allowed := make(map[string]bool)
	for _, parent := range asStrings(parents) {
		for _, child := range spec.Choices2[parent] {
			allowed[child.Value] = true
		}
	}
	var errs ValidationErrors
	for _, v := range asStrings(details) {
		if !allowed[v] {
			errs = append(errs, FieldError{
				Field:   spec.DetailName(),
				Message: "choix hors liste: " + v,
			})
		}
	}
	return errs
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func asStrings(value any) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
