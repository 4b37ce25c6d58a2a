package services

import (
	"fmt"
	"strings"

	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// Display levels stored on the profile.
const (
	DisplayMini    = 0
	DisplayDefault = 1
	DisplayMaxi    = 2
)

// MaskedValue stands in for the value of a field hidden by a mask. The
// field keeps its label so the reader sees something was withheld.
const MaskedValue = "*****"

// Mask withholds chosen fields from a rendered profile. Story, when
// set, is surfaced alongside the profile to explain the redaction.
type Mask struct {
	Fields map[string]bool
	Story  string
}

func (m *Mask) covers(name string) bool {
	return m != nil && m.Fields[name]
}

// PublicField is one rendered profile entry: labels on both sides.
type PublicField struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// PublicGroup is a rendered profile section. Empty groups are dropped.
type PublicGroup struct {
	Label  string        `json:"label"`
	Fields []PublicField `json:"fields"`
}

// PublicProfile is the directory view of a member, filtered by their
// chosen display level and the viewer's contact type.
type PublicProfile struct {
	FullName     string        `json:"full_name"`
	ProfileLabel string        `json:"profile_label"`
	Community    string        `json:"community"`
	Organisation string        `json:"organisation,omitempty"`
	PhotoURL     string        `json:"photo_url,omitempty"`
	MaskStory    string        `json:"mask_story,omitempty"`
	Groups       []PublicGroup `json:"groups"`
}

// VisibilityService renders member profiles for the directory, honouring
// the per-field display tiers and the contact detail opt-ins.
type VisibilityService struct {
	model    *survey.Model
	registry *ontology.Registry
	profiles *ProfileService
}

func NewVisibilityService(model *survey.Model, registry *ontology.Registry, profiles *ProfileService) *VisibilityService {
	return &VisibilityService{model: model, registry: registry, profiles: profiles}
}

// Render builds the public view of a member. viewerContactType is the
// contact type of the authenticated viewer, or "" for anonymous. A
// non-nil mask redacts the fields it covers.
func (s *VisibilityService) Render(user *models.User, viewerContactType string, mask *Mask) (*PublicProfile, error) {
	kyc := user.Profile
	if kyc == nil {
		return nil, fmt.Errorf("user %d has no profile", user.ID)
	}
	sp, err := s.model.Profile(kyc.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &PublicProfile{
		FullName:     user.FullName(),
		ProfileLabel: kyc.ProfileLabel,
		Community:    kyc.ProfileCommunity,
		Organisation: user.OrganisationName(),
	}
	if mask != nil {
		out.MaskStory = mask.Story
	}
	level := kyc.DisplayLevel
	values := s.profiles.Prefill(user, kyc)

	for _, group := range sp.Groups {
		rendered := PublicGroup{Label: group.Label}
		for _, gf := range group.Fields {
			field := gf.Field
			if !field.IsVisible(level) {
				continue
			}
			if !s.contactAllowed(kyc, field.Name, viewerContactType) {
				continue
			}
			base, _ := survey.SplitType(field.Type)
			if base == "photo" {
				if len(user.Photo) > 0 && !mask.covers(field.Name) {
					out.PhotoURL = fmt.Sprintf("/api/v1/kyc/photo/%d", user.ID)
				}
				continue
			}
			value := s.renderValue(field, base, values, level)
			if isBlank(value) {
				continue
			}
			// Masked fields keep their label so viewers see the field
			// exists, the value itself is withheld.
			if mask.covers(field.Name) {
				value = MaskedValue
			}
			label, _ := field.Labels()
			rendered.Fields = append(rendered.Fields, PublicField{
				Name:  field.Name,
				Label: label,
				Value: value,
			})
		}
		if len(rendered.Fields) > 0 {
			out.Groups = append(out.Groups, rendered)
		}
	}
	return out, nil
}

// contactAllowed applies the contact detail opt-ins: direct reach
// channels are shown only to viewer contact types the member accepted.
func (s *VisibilityService) contactAllowed(kyc *models.KYCProfile, fieldName, viewerContactType string) bool {
	var prefix string
	switch fieldName {
	case "email", "email_secours":
		prefix = "email_"
	case "tel_mobile":
		prefix = "mobile_"
	default:
		return true
	}
	if viewerContactType == "" {
		return false
	}
	allowed, _ := kyc.ShowContactDetails[prefix+viewerContactType].(bool)
	return allowed
}

// renderValue resolves stored values into display labels. Secrets are
// masked, town details collapse to the city at the minimal level.
func (s *VisibilityService) renderValue(field *survey.Field, base string, values map[string]any, level int) any {
	raw := values[field.Name]
	if base == "password" {
		if isBlank(raw) {
			return nil
		}
		return "*****"
	}
	if field.Name == "pays_zip_ville" {
		country, _ := raw.(string)
		detail, _ := values["pays_zip_ville_detail"].(string)
		_, city := splitZipTown(detail)
		if level == DisplayMini {
			return city
		}
		if city == "" {
			return s.registry.Label(ontology.FamilyPays, country)
		}
		return city + ", " + s.registry.Label(ontology.FamilyPays, country)
	}

	family := ontology.FamilyFor(field.Name)
	switch v := raw.(type) {
	case string:
		if family == "" {
			return v
		}
		return s.registry.Label(family, v)
	case bool:
		if !v {
			return nil
		}
		return "oui"
	case []string, []any:
		var out []string
		for _, item := range asList(v) {
			if family == "" {
				out = append(out, item)
				continue
			}
			out = append(out, s.registry.Label(family, item))
		}
		return out
	default:
		return raw
	}
}

func asList(value any) []string {
	switch v := value.(type) {
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

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
