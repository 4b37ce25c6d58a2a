package models

import (
	"time"

	"gorm.io/gorm"
)

// Organisation families. AUTO organisations are auto-created from a user's
// declared employer and garbage-collected when their member set empties.
const (
	OrgTypeAuto   = "AUTO"
	OrgTypeMedia  = "MEDIA"
	OrgTypeAgency = "AGENCY"
	OrgTypeCom    = "COM"
	OrgTypeOther  = "OTHER"
)

// Business Wall subscription families, set iff the organisation is not AUTO.
const (
	BWTypeMedia        = "MEDIA"
	BWTypeAgency       = "AGENCY"
	BWTypeCom          = "COM"
	BWTypeCorporate    = "CORPORATE"
	BWTypePressUnion   = "PRESSUNION"
	BWTypeOrganisation = "ORGANISATION"
	BWTypeTransformer  = "TRANSFORMER"
	BWTypeAcademics    = "ACADEMICS"
)

type Organisation struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;index" json:"name"`
	Type string `gorm:"size:16;not null;default:'AUTO';index" json:"type"`
	// Empty for AUTO organisations.
	BWType string `gorm:"size:16;default:''" json:"bw_type"`

	// Attributes composing the AUTO identity key; NULL for non-AUTO rows so
	// the unique index never collides across families.
	CompositeKey *string `gorm:"size:40;uniqueIndex" json:"-"`

	SecteursActivite   string `gorm:"size:255;default:''" json:"secteurs_activite"`
	TypeOrganisation   string `gorm:"size:255;default:''" json:"type_organisation"`
	TailleOrga         string `gorm:"size:64;default:''" json:"taille_orga"`
	PaysZipVille       string `gorm:"size:64;default:''" json:"pays_zip_ville"`
	PaysZipVilleDetail string `gorm:"size:255;default:''" json:"pays_zip_ville_detail"`

	Members []User `gorm:"foreignKey:OrganisationID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Organisation) IsAuto() bool { return o.Type == OrgTypeAuto }

// Invitation pre-seeds the adoption of a member into a non-AUTO
// organisation: a registering user whose email is invited and whose declared
// organisation name matches joins it instead of spawning an AUTO org.
type Invitation struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"size:255;not null;index" json:"email"`
	OrganisationID uint   `gorm:"not null;index" json:"organisation_id"`

	CreatedAt time.Time `json:"created_at"`
}
