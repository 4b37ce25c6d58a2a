package models

import (
	"time"

	"gorm.io/gorm"
)

// Validation status values surfaced to the admin queues.
const (
	StatusNew               = "NEW"
	StatusValidated         = "VALIDATED"
	StatusMinorUpdate       = "MINOR_UPDATE"
	StatusMajorUpdatePrefix = "MAJOR_UPDATE: "
	StatusOrgChanged        = "ORGANISATION_UPDATE"
)

// User is the account record owning a KYCProfile. A user pending a major
// profile change is shadowed by a clone row (IsClone=true) carrying the
// pending values until an administrator validates them.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email string `gorm:"size:255;uniqueIndex" json:"email"`
	// Real email parked here while the clone holds a synthetic one.
	EmailSafeCopy string `gorm:"size:255;default:''" json:"-"`
	EmailSecours  string `gorm:"size:255;default:''" json:"email_secours"`

	Password string `gorm:"size:255" json:"-"`

	IsClone      bool `gorm:"default:false;index" json:"-"`
	ClonedUserID uint `gorm:"default:0" json:"-"`

	SubmitedAt       time.Time  `json:"submited_at"`
	ValidatedAt      *time.Time `json:"validated_at"`
	ValidationStatus string     `gorm:"size:255;default:''" json:"validation_status"`
	ModifiedAt       *time.Time `json:"modified_at"`

	LastLoginAt    *time.Time `json:"-"`
	CurrentLoginAt *time.Time `json:"-"`
	LoginCount     int        `gorm:"default:0" json:"-"`

	Active       bool   `gorm:"default:false;index" json:"active"`
	FsUniquifier string `gorm:"size:64;uniqueIndex" json:"-"`

	GCUAcceptation     bool       `gorm:"default:false" json:"-"`
	GCUAcceptationDate *time.Time `json:"-"`

	Gender    string `gorm:"size:1;default:'?'" json:"gender"`
	FirstName string `gorm:"size:64;default:''" json:"first_name"`
	LastName  string `gorm:"size:64;default:''" json:"last_name"`
	Pseudo    string `gorm:"size:64;default:''" json:"pseudo"`

	Photo                    []byte `json:"-"`
	PhotoFilename            string `gorm:"size:255;default:''" json:"-"`
	PhotoCartePresse         []byte `json:"-"`
	PhotoCartePresseFilename string `gorm:"size:255;default:''" json:"-"`

	TelMobile string `gorm:"size:20;default:''" json:"tel_mobile"`

	// Addressable (used by the organisation resolver)
	Country   string  `gorm:"size:64;default:''" json:"country"`
	Region    string  `gorm:"size:64;default:''" json:"region"`
	City      string  `gorm:"size:64;default:''" json:"city"`
	ZipCode   string  `gorm:"size:16;default:''" json:"zip_code"`
	Latitude  float64 `gorm:"default:0" json:"-"`
	Longitude float64 `gorm:"default:0" json:"-"`

	Status string  `gorm:"size:32;default:''" json:"status"`
	Karma  float64 `gorm:"default:0" json:"karma"`

	OrganisationID *uint         `gorm:"index" json:"organisation_id"`
	Organisation   *Organisation `gorm:"foreignKey:OrganisationID" json:"-"`

	Profile *KYCProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// OrganisationName is the display name of the attached organisation.
func (u *User) OrganisationName() string {
	if u.Organisation != nil {
		return u.Organisation.Name
	}
	return ""
}
