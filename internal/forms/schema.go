// Package forms turns a survey profile into a renderable form schema,
// validates submissions against it and collects the managed values that
// feed the profile projector.
package forms

import (
	"github.com/aipress24/kyc-engine/internal/ontology"
)

// Widget kinds understood by the wizard frontend.
const (
	WidgetText        = "text"
	WidgetTextarea    = "textarea"
	WidgetCheckbox    = "checkbox"
	WidgetEmail       = "email"
	WidgetTel         = "tel"
	WidgetPassword    = "password"
	WidgetPostcode    = "postcode"
	WidgetURL         = "url"
	WidgetPhoto       = "photo"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multiselect"
	WidgetDualSelect  = "dualselect"
	WidgetDetail      = "detail"
	WidgetCountry     = "country"
)

// FieldSpec is one renderable form field. Dual fields carry a second
// label and a second choice level; their submitted value is the pair
// (name, name_detail).
type FieldSpec struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Widget       string `json:"widget"`
	Label        string `json:"label"`
	Label2       string `json:"label2,omitempty"`
	UpperMessage string `json:"upper_message,omitempty"`

	Required  bool `json:"required"`
	ReadOnly  bool `json:"readonly"`
	Multiple  bool `json:"multiple"`
	Dual      bool `json:"dual"`
	AllowFree bool `json:"allow_free"`
	MaxLength int  `json:"max_length,omitempty"`

	Choices  []ontology.Entry            `json:"choices,omitempty"`
	Choices2 map[string][]ontology.Entry `json:"choices2,omitempty"`

	Value  any `json:"value,omitempty"`
	Value2 any `json:"value2,omitempty"`
}

// DetailName is the submission key of the field's secondary value.
func (f *FieldSpec) DetailName() string {
	return f.Name + "_detail"
}

// GroupSpec is an ordered form section.
type GroupSpec struct {
	Label  string       `json:"label"`
	Fields []*FieldSpec `json:"fields"`
}

// FormSchema is the complete renderable form of one survey profile.
type FormSchema struct {
	ProfileID    string       `json:"profile_id"`
	ProfileCode  string       `json:"profile_code"`
	ProfileLabel string       `json:"profile_label"`
	Community    string       `json:"community"`
	ContactType  string       `json:"contact_type"`
	ReadOnly     bool         `json:"readonly"`
	Groups       []*GroupSpec `json:"groups"`
}

// Field returns the spec with the given name, or nil.
func (s *FormSchema) Field(name string) *FieldSpec {
	for _, group := range s.Groups {
		for _, f := range group.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// FieldNames lists the field names in render order.
func (s *FormSchema) FieldNames() []string {
	var out []string
	for _, group := range s.Groups {
		for _, f := range group.Fields {
			out = append(out, f.Name)
		}
	}
	return out
}
