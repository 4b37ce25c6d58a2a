package forms

import (
	"fmt"

	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// OrgNameSource returns the live organisation names to merge into one
// vocabulary family.
type OrgNameSource func(family string) ([]string, error)

// Builder assembles form schemas from the survey meta-model and the
// ontology registry.
type Builder struct {
	model    *survey.Model
	registry *ontology.Registry
	orgNames OrgNameSource
}

func NewBuilder(model *survey.Model, registry *ontology.Registry, orgNames OrgNameSource) *Builder {
	return &Builder{model: model, registry: registry, orgNames: orgNames}
}

// BuildOptions controls the form variant. ModeEdition is the settings
// page of an existing member: the login email and password fields are
// managed elsewhere and dropped. ReadOnly renders the admin review view.
type BuildOptions struct {
	ModeEdition bool
	ReadOnly    bool
}

// Build produces the renderable schema of one survey profile, with
// prefill values keyed by field name.
func (b *Builder) Build(p *survey.Profile, prefill map[string]any, opts BuildOptions) (*FormSchema, error) {
	schema := &FormSchema{
		ProfileID:    p.ID,
		ProfileCode:  p.Code,
		ProfileLabel: p.Description,
		Community:    p.Community,
		ContactType:  p.ContactType,
		ReadOnly:     opts.ReadOnly,
	}
	for _, group := range p.Groups {
		gs := &GroupSpec{Label: group.Label}
		for _, gf := range group.Fields {
			sf := gf.Field
			base, qualifier := survey.SplitType(sf.Type)
			if opts.ModeEdition && (sf.Name == "email" || base == "password") {
				continue
			}
			// A read-only review form has nothing to require.
			spec, err := b.buildField(sf, base, qualifier, gf.Code == survey.CodeMandatory && !opts.ReadOnly)
			if err != nil {
				return nil, err
			}
			spec.ReadOnly = opts.ReadOnly
			if prefill != nil {
				spec.Value = prefill[spec.Name]
				if spec.Dual {
					spec.Value2 = prefill[spec.DetailName()]
				}
			}
			if spec.Widget == WidgetCountry {
				if err := b.prefillTowns(spec); err != nil {
					return nil, err
				}
			}
			gs.Fields = append(gs.Fields, spec)
		}
		if len(gs.Fields) > 0 {
			schema.Groups = append(schema.Groups, gs)
		}
	}
	return schema, nil
}

func (b *Builder) buildField(sf *survey.Field, base, qualifier string, required bool) (*FieldSpec, error) {
	build, ok := constructors[base]
	if !ok {
		return nil, fmt.Errorf("field %s: no widget for type %q", sf.Name, sf.Type)
	}
	label, _ := sf.Labels()
	spec := &FieldSpec{
		ID:           sf.ID,
		Name:         sf.Name,
		Type:         sf.Type,
		Label:        label,
		UpperMessage: sf.UpperMessage,
		Required:     required,
	}
	if required {
		spec.Label += tagRequired
	}
	if err := build(b, sf, qualifier, spec); err != nil {
		return nil, fmt.Errorf("field %s: %w", sf.Name, err)
	}
	return spec, nil
}

// prefillTowns loads the town list of the already selected country so
// the edit form renders with its detail choices in place.
func (b *Builder) prefillTowns(spec *FieldSpec) error {
	country, _ := spec.Value.(string)
	if country == "" {
		return nil
	}
	towns, err := b.registry.Towns(country)
	if err != nil {
		return err
	}
	spec.Choices2 = map[string][]ontology.Entry{country: towns}
	return nil
}

// family resolves the vocabulary family of a field, letting a type
// qualifier override the name binding.
func (b *Builder) family(name, qualifier string) string {
	if qualifier != "" {
		return qualifier
	}
	return ontology.FamilyFor(name)
}

// choices loads the flat choices of a field, merging live organisation
// names into the families that accept them.
func (b *Builder) choices(name, qualifier string) ([]ontology.Entry, error) {
	family := b.family(name, qualifier)
	if family == "" {
		return nil, nil
	}
	entries, err := b.registry.Flat(family)
	if err != nil {
		return nil, err
	}
	if b.orgNames != nil && ontology.MergesOrgNames(family) {
		names, err := b.orgNames(family)
		if err != nil {
			return nil, err
		}
		entries = ontology.MergeNames(entries, names)
	}
	return entries, nil
}
