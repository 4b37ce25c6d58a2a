package forms

import (
	"fmt"

	"github.com/aipress24/kyc-engine/internal/survey"
)

// Submission size caps.
const (
	MaxStringLen      = 250
	MaxTextareaLen    = 1500
	MaxTextarea300Len = 300
)

// Label decorations, appended in constructor order.
const (
	tagRequired = " (*)"
	tagMultiple = " (plusieurs choix possibles)"
	tagFree     = " (vous pouvez ajouter un nouvel élément à la liste proposée)"
	tagPhoto    = " (format JPG, PNG ou PDF, taille maximum de 2MB)"
)

func tagMaxChars(n int) string {
	return fmt.Sprintf(" (maximum %d caractères)", n)
}

type constructor func(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error

// constructors maps each base type token to the builder of its widget.
// The set is closed: the survey loader rejects anything else.
var constructors = map[string]constructor{
	"boolean":     makeCheckbox,
	"boolink":     makeCheckbox,
	"string":      makeString,
	"textarea":    makeTextarea(MaxTextareaLen),
	"textarea300": makeTextarea(MaxTextarea300Len),
	"photo":       makePhoto,
	"email":       makeSimple(WidgetEmail),
	"tel":         makeSimple(WidgetTel),
	"password":    makeSimple(WidgetPassword),
	"postcode":    makeSimple(WidgetPostcode),
	"url":         makeSimple(WidgetURL),
	"list":        makeList(false),
	"listfree":    makeList(true),
	"multi":       makeMulti(false),
	"multifree":   makeMulti(true),
	"multiopt":    makeMulti(false),
	"multidual":   makeMultiDual,
	"long":        makeLong,
	"country":     makeCountry,
}

func makeCheckbox(_ *Builder, _ *survey.Field, _ string, spec *FieldSpec) error {
	spec.Widget = WidgetCheckbox
	return nil
}

func makeString(_ *Builder, _ *survey.Field, _ string, spec *FieldSpec) error {
	spec.Widget = WidgetText
	spec.MaxLength = MaxStringLen
	return nil
}

func makeTextarea(maxLen int) constructor {
	return func(_ *Builder, _ *survey.Field, _ string, spec *FieldSpec) error {
		spec.Widget = WidgetTextarea
		spec.MaxLength = maxLen
		spec.Label += tagMaxChars(maxLen)
		return nil
	}
}

func makePhoto(_ *Builder, _ *survey.Field, _ string, spec *FieldSpec) error {
	spec.Widget = WidgetPhoto
	spec.Label += tagPhoto
	return nil
}

func makeSimple(widget string) constructor {
	return func(_ *Builder, _ *survey.Field, _ string, spec *FieldSpec) error {
		spec.Widget = widget
		return nil
	}
}

func makeList(free bool) constructor {
	return func(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error {
		choices, err := b.choices(sf.Name, qualifier)
		if err != nil {
			return err
		}
		spec.Widget = WidgetSelect
		spec.Choices = choices
		spec.AllowFree = free
		if free {
			spec.Label += tagFree
		}
		return nil
	}
}

func makeMulti(free bool) constructor {
	return func(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error {
		choices, err := b.choices(sf.Name, qualifier)
		if err != nil {
			return err
		}
		spec.Widget = WidgetMultiSelect
		spec.Multiple = true
		spec.Choices = choices
		spec.AllowFree = free
		spec.Label += tagMultiple
		if free {
			spec.Label += tagFree
		}
		return nil
	}
}

func makeMultiDual(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error {
	list, err := b.registry.Dual(b.family(sf.Name, qualifier))
	if err != nil {
		return err
	}
	spec.Widget = WidgetDualSelect
	spec.Multiple = true
	spec.Dual = true
	spec.Choices = list.Field1
	spec.Choices2 = list.Field2
	spec.Label += tagMultiple
	_, spec.Label2 = sf.Labels()
	return nil
}

// makeLong builds a select whose detail part is free text, stored as the
// (name, name_detail) pair.
func makeLong(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error {
	choices, err := b.choices(sf.Name, qualifier)
	if err != nil {
		return err
	}
	spec.Widget = WidgetDetail
	spec.Dual = true
	spec.Choices = choices
	_, spec.Label2 = sf.Labels()
	return nil
}

// makeCountry builds the country selector whose detail part is the
// zip/town list of the selected country, loaded lazily.
func makeCountry(b *Builder, sf *survey.Field, qualifier string, spec *FieldSpec) error {
	choices, err := b.registry.Flat(b.family(sf.Name, qualifier))
	if err != nil {
		return err
	}
	spec.Widget = WidgetCountry
	spec.Dual = true
	spec.Choices = choices
	_, spec.Label2 = sf.Labels()
	return nil
}
