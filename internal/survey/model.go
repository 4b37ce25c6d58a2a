// Package survey holds the in-memory meta-model of the KYC questionnaire:
// communities, profiles, groups and typed fields, loaded once from the
// survey workbook and immutable afterwards.
package survey

import (
	"fmt"
	"strings"
)

// Communities, in wizard landing-page order.
const (
	CommunityPressMedia    = "PRESS_MEDIA"
	CommunityCommunicants  = "COMMUNICANTS"
	CommunityLeadersExpert = "LEADERS_EXPERTS"
	CommunityTransformers  = "TRANSFORMERS"
	CommunityAcademics     = "ACADEMICS"
)

var CommunityOrder = []string{
	CommunityPressMedia,
	CommunityCommunicants,
	CommunityLeadersExpert,
	CommunityTransformers,
	CommunityAcademics,
}

// communityLabels maps workbook header labels to community names.
var communityLabels = map[string]string{
	"PRESS_MEDIA":             CommunityPressMedia,
	"Presse & Médias":         CommunityPressMedia,
	"COMMUNICANTS":            CommunityCommunicants,
	"Communicants":            CommunityCommunicants,
	"LEADERS_EXPERTS":         CommunityLeadersExpert,
	"Dirigeants & Experts":    CommunityLeadersExpert,
	"TRANSFORMERS":            CommunityTransformers,
	"Transformeurs":           CommunityTransformers,
	"ACADEMICS":               CommunityAcademics,
	"Académiques & Étudiants": CommunityAcademics,
}

// profileCodes is the closed set of personas the survey may declare.
var profileCodes = map[string]bool{
	"PM_DIR": true, "PM_JR_CP_SAL": true, "PM_JR_PIG": true,
	"PM_JR_CP_ME": true, "PM_JR_ME": true, "PM_DIR_INST": true,
	"PM_JR_INST": true, "PM_DIR_SYND": true,
	"PR_DIR": true, "PR_CS": true, "PR_CS_IND": true,
	"PR_DIR_COM": true, "PR_CS_COM": true,
	"XP_DIR_ANY": true, "XP_ANY": true, "XP_PR": true, "XP_IND": true,
	"XP_DIR_SU": true, "XP_INV_PUB": true, "XP_DIR_EVT": true,
	"TP_DIR_ORG": true, "TR_CS_ORG": true, "TR_CS_ORG_PR": true,
	"TR_CS_ORG_IND": true, "TR_DIR_SU_ORG": true, "TR_INV_ORG": true,
	"TR_DIR_POLE": true,
	"AC_DIR":      true, "AC_DIR_JR": true, "AC_ENS": true, "AC_DOC": true,
	"AC_ST": true, "AC_ST_ENT": true,
}

// Per-profile requirement codes.
const (
	CodeMandatory     = "M"
	CodeOptional      = "O"
	CodeNotApplicable = "N"
	CodeUnknown       = "?"
)

// Field is one typed survey question, shared across profiles under a
// stable synthetic id (F001...).
type Field struct {
	ID           string
	Name         string
	Type         string
	Description  string
	UpperMessage string

	PublicMini    bool
	PublicDefault bool
	PublicMaxi    bool

	ValidateChanges bool
	IsOrganisation  bool
}

// IsVisible applies the display level to the three independent tier flags.
func (f *Field) IsVisible(level int) bool {
	switch level {
	case 0:
		return f.PublicMini
	case 1:
		return f.PublicDefault
	case 2:
		return f.PublicMaxi
	default:
		return false
	}
}

// Prefixed type tokens may carry a qualifier after the first underscore,
// as in "list_pays" where "pays" overrides the vocabulary family.
var prefixedTypes = map[string]bool{
	"list": true, "listfree": true, "multi": true, "multidual": true,
	"multifree": true, "multiopt": true, "long": true, "country": true,
}

// SplitType splits a field type token into its base type and optional
// qualifier.
func SplitType(typ string) (base, qualifier string) {
	head, rest, found := strings.Cut(typ, "_")
	if found && prefixedTypes[head] {
		return head, rest
	}
	return typ, ""
}

// Labels returns the primary and secondary labels of a dual field; the
// secondary part is empty for single fields.
func (f *Field) Labels() (string, string) {
	first, second, _ := strings.Cut(f.Description, ";")
	return strings.TrimSpace(first), strings.TrimSpace(second)
}

// GroupField pairs a field with its requirement code for one profile.
type GroupField struct {
	Field *Field
	Code  string
}

// Group is an ordered section of a profile's form.
type Group struct {
	Label  string
	Fields []GroupField
}

// Profile is one persona template with its own ordered question set.
type Profile struct {
	ID          string
	Code        string
	Description string
	Community   string
	ContactType string
	Groups      []Group
}

// Fields flattens the profile groups, optionally keeping only mandatory
// entries.
func (p *Profile) Fields(onlyMandatory bool) []*Field {
	var out []*Field
	for _, group := range p.Groups {
		for _, gf := range group.Fields {
			if onlyMandatory && gf.Code != CodeMandatory {
				continue
			}
			out = append(out, gf.Field)
		}
	}
	return out
}

// OrganisationField returns the name of the field whose value is the
// declared organisation name, or "" if the profile has none.
func (p *Profile) OrganisationField() string {
	for _, group := range p.Groups {
		for _, gf := range group.Fields {
			if gf.Field.IsOrganisation {
				return gf.Field.Name
			}
		}
	}
	return ""
}

// ValidateChangeFields returns the names of the profile fields flagged as
// requiring administrator validation on change.
func (p *Profile) ValidateChangeFields() []string {
	var out []string
	for _, group := range p.Groups {
		for _, gf := range group.Fields {
			if gf.Field.ValidateChanges {
				out = append(out, gf.Field.Name)
			}
		}
	}
	return out
}

// Model is the loaded meta-model. Immutable after load.
type Model struct {
	Fields   map[string]*Field // keyed by synthetic id
	Profiles []*Profile
}

// Profile returns the profile with the given synthetic id.
func (m *Model) Profile(id string) (*Profile, error) {
	for _, p := range m.Profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown survey profile: %q", id)
}

// ProfileByCode returns the profile with the given business code.
func (m *Model) ProfileByCode(code string) (*Profile, error) {
	for _, p := range m.Profiles {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown survey profile code: %q", code)
}

// FieldByName returns the first field with the given business name.
func (m *Model) FieldByName(name string) *Field {
	for _, p := range m.Profiles {
		for _, group := range p.Groups {
			for _, gf := range group.Fields {
				if gf.Field.Name == name {
					return gf.Field
				}
			}
		}
	}
	return nil
}

// Communities groups the profiles by community, in fixed community order,
// for the wizard landing page.
func (m *Model) Communities() map[string][]*Profile {
	out := make(map[string][]*Profile, len(CommunityOrder))
	for _, p := range m.Profiles {
		out[p.Community] = append(out[p.Community], p)
	}
	return out
}

// validate enforces the meta-model invariants after load.
func (m *Model) validate() error {
	for _, p := range m.Profiles {
		if len(p.Groups) == 0 {
			return fmt.Errorf("survey profile %s (%s) has no group", p.ID, p.Code)
		}
		if len(p.Fields(true)) == 0 {
			return fmt.Errorf("survey profile %s (%s) has no mandatory field", p.ID, p.Code)
		}
		orgFields := 0
		for _, group := range p.Groups {
			if len(group.Fields) == 0 {
				return fmt.Errorf("survey profile %s: empty group %q", p.ID, group.Label)
			}
			for _, gf := range group.Fields {
				if gf.Field.IsOrganisation {
					orgFields++
				}
			}
		}
		if orgFields > 1 {
			return fmt.Errorf("survey profile %s: %d organisation fields", p.ID, orgFields)
		}
	}
	return nil
}
