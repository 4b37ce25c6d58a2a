package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// KYCProfile is the persisted outcome of the onboarding survey: a typed
// envelope plus five JSON sub-documents, each with a closed key set (see
// profile_keys.go). A field name belongs to exactly one sub-document.
type KYCProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`

	ProfileID        string `gorm:"size:8;default:''" json:"profile_id"`
	ProfileCode      string `gorm:"size:32;default:''" json:"profile_code"`
	ProfileLabel     string `gorm:"size:255;default:''" json:"profile_label"`
	ProfileCommunity string `gorm:"size:32;default:''" json:"profile_community"`

	ContactType  string `gorm:"size:32;default:''" json:"contact_type"`
	DisplayLevel int    `gorm:"default:1" json:"display_level"`
	Presentation string `gorm:"type:text;default:''" json:"presentation"`

	ShowContactDetails  datatypes.JSONMap `json:"show_contact_details"`
	InfoPersonnelle     datatypes.JSONMap `json:"info_personnelle"`
	InfoProfessionnelle datatypes.JSONMap `json:"info_professionnelle"`
	MatchMaking         datatypes.JSONMap `json:"match_making"`
	InfoHobby           datatypes.JSONMap `json:"info_hobby"`
	BusinessWall        datatypes.JSONMap `json:"business_wall"`

	DateUpdate time.Time `gorm:"autoUpdateTime" json:"date_update"`
}

func (KYCProfile) TableName() string { return "kyc_profiles" }

// subDocs returns the five sub-documents in their fixed lookup order.
func (p *KYCProfile) subDocs() []datatypes.JSONMap {
	return []datatypes.JSONMap{
		p.ShowContactDetails,
		p.InfoPersonnelle,
		p.InfoProfessionnelle,
		p.MatchMaking,
		p.InfoHobby,
		p.BusinessWall,
	}
}

// HasFieldName reports whether field_name is a known key of this profile.
func (p *KYCProfile) HasFieldName(name string) bool {
	if name == "presentation" {
		return true
	}
	for _, doc := range p.subDocs() {
		if _, ok := doc[name]; ok {
			return true
		}
	}
	return false
}

// GetValue looks a field up across the scalar columns and the sub-documents.
func (p *KYCProfile) GetValue(name string) any {
	if name == "presentation" {
		return p.Presentation
	}
	for _, doc := range p.subDocs() {
		if v, ok := doc[name]; ok {
			return v
		}
	}
	return ""
}

// SetValue writes a field into whichever sub-document owns its key.
// Unknown keys are dropped.
func (p *KYCProfile) SetValue(name string, value any) {
	if name == "presentation" {
		p.Presentation, _ = value.(string)
		return
	}
	for _, doc := range p.subDocs() {
		if _, ok := doc[name]; ok {
			doc[name] = value
			return
		}
	}
}

// GetFirstValue returns the field value, unwrapping a list to its head.
func (p *KYCProfile) GetFirstValue(name string) string {
	return firstString(p.GetValue(name))
}

func firstString(value any) string {
	switch v := value.(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return ""
	case []any:
		if len(v) > 0 {
			s, _ := v[0].(string)
			return s
		}
		return ""
	case string:
		return v
	default:
		return ""
	}
}

// AllBWTriggers returns the names of all business wall triggers set to true.
func (p *KYCProfile) AllBWTriggers() []string {
	var names []string
	for _, key := range BusinessWallKeys {
		if b, ok := p.BusinessWall[key].(bool); ok && b {
			names = append(names, key)
		}
	}
	return names
}

// FirstBWTrigger returns the first true business wall trigger, or "".
func (p *KYCProfile) FirstBWTrigger() string {
	if names := p.AllBWTriggers(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// SecteursActivite aggregates the three detailed sector lists.
func (p *KYCProfile) SecteursActivite() []string {
	var out []string
	for _, key := range []string{
		"secteurs_activite_detailles_detail",
		"secteurs_activite_medias_detail",
		"secteurs_activite_rp_detail",
	} {
		out = append(out, stringList(p.InfoProfessionnelle[key])...)
	}
	return out
}

// ToutesFonctions aggregates the journalism and sector function lists.
func (p *KYCProfile) ToutesFonctions() []string {
	var out []string
	for _, key := range []string{
		"fonctions_journalisme",
		"fonctions_pol_adm_detail",
		"fonctions_org_priv_detail",
		"fonctions_ass_syn_detail",
	} {
		out = append(out, stringList(p.MatchMaking[key])...)
	}
	return out
}

func stringList(value any) []string {
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
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Clone duplicates the profile without id, user id and update timestamp.
func (p *KYCProfile) Clone() *KYCProfile {
	return &KYCProfile{
		ProfileID:           p.ProfileID,
		ProfileCode:         p.ProfileCode,
		ProfileLabel:        p.ProfileLabel,
		ProfileCommunity:    p.ProfileCommunity,
		ContactType:         p.ContactType,
		DisplayLevel:        p.DisplayLevel,
		Presentation:        p.Presentation,
		ShowContactDetails:  copyDoc(p.ShowContactDetails),
		InfoPersonnelle:     copyDoc(p.InfoPersonnelle),
		InfoProfessionnelle: copyDoc(p.InfoProfessionnelle),
		MatchMaking:         copyDoc(p.MatchMaking),
		InfoHobby:           copyDoc(p.InfoHobby),
		BusinessWall:        copyDoc(p.BusinessWall),
	}
}

func copyDoc(doc datatypes.JSONMap) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case []any:
			out[k] = append([]any(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}
