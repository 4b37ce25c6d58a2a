package services

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/models"
	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/survey"
)

// familyOrgTypes narrows the live organisation names merged into a
// vocabulary family to a matching organisation type. Families absent
// here accept any type.
var familyOrgTypes = map[string]string{
	ontology.FamilyMedia:     models.OrgTypeMedia,
	ontology.FamilyAgenceRP:  models.OrgTypeAgency,
	ontology.FamilyGroupeCom: models.OrgTypeCom,
}

// secteursFields are the sector pairs contributing to the automatic
// organisation identity. The first pair carrying values wins.
var secteursFields = []string{
	"secteurs_activite_detailles",
	"secteurs_activite_medias",
	"secteurs_activite_rp",
}

// OrgResolver attaches accounts to organisations from the name they
// declared in the survey. A standing invitation whose organisation
// carries the declared name adopts the member into it; everyone else
// lands on an automatic placeholder keyed by the declared attributes.
type OrgResolver struct {
	db *gorm.DB
}

func NewOrgResolver(db *gorm.DB) *OrgResolver {
	return &OrgResolver{db: db}
}

// DeclaredName reads the organisation name out of the profile. List
// valued fields contribute their head.
func (r *OrgResolver) DeclaredName(sp *survey.Profile, kyc *models.KYCProfile) string {
	field := sp.OrganisationField()
	if field == "" {
		return ""
	}
	return strings.TrimSpace(kyc.GetFirstValue(field))
}

// Resolve attaches the user inside the caller's transaction and garbage
// collects the automatic organisation left behind, if any.
func (r *OrgResolver) Resolve(tx *gorm.DB, user *models.User, sp *survey.Profile, kyc *models.KYCProfile) error {
	previous := user.OrganisationID

	name := r.DeclaredName(sp, kyc)
	if name == "" {
		user.OrganisationID = nil
		user.Organisation = nil
		return r.collect(tx, previous, user.ID)
	}

	org, err := r.resolveByInvitation(tx, user.Email, name)
	if err != nil {
		return err
	}
	if org == nil {
		org, err = r.upsertAuto(tx, autoOrganisation(name, kyc))
		if err != nil {
			return err
		}
	}

	user.OrganisationID = &org.ID
	user.Organisation = org
	if previous != nil && *previous != org.ID {
		return r.collect(tx, previous, user.ID)
	}
	return nil
}

// resolveByInvitation honours a standing invitation for the user's
// email, but only into an organisation carrying the declared name. An
// invitation to some other organisation does not hijack the member.
func (r *OrgResolver) resolveByInvitation(tx *gorm.DB, email, declaredName string) (*models.Organisation, error) {
	var invitations []models.Invitation
	err := tx.Where("lower(email) = ?", strings.ToLower(email)).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("invitation lookup: %w", err)
	}
	for _, invitation := range invitations {
		var org models.Organisation
		if err := tx.First(&org, invitation.OrganisationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		if strings.EqualFold(org.Name, declaredName) {
			return &org, nil
		}
	}
	return nil, nil
}

// autoOrganisation builds the placeholder row from the declared name
// and the profile attributes composing its identity.
func autoOrganisation(name string, kyc *models.KYCProfile) *models.Organisation {
	return &models.Organisation{
		Name:               name,
		Type:               models.OrgTypeAuto,
		SecteursActivite:   collapseSecteurs(kyc),
		TypeOrganisation:   strings.Join(orgStringList(kyc, "type_orga"), ", "),
		TailleOrga:         kyc.GetFirstValue("taille_orga"),
		PaysZipVille:       kyc.GetFirstValue("pays_zip_ville"),
		PaysZipVilleDetail: kyc.GetFirstValue("pays_zip_ville_detail"),
	}
}

// collapseSecteurs folds the three sector pairs into one attribute,
// first non-empty pair wins.
func collapseSecteurs(kyc *models.KYCProfile) string {
	for _, name := range secteursFields {
		values := orgStringList(kyc, name)
		values = append(values, orgStringList(kyc, name+"_detail")...)
		if len(values) > 0 {
			return strings.Join(values, ", ")
		}
	}
	return ""
}

func orgStringList(kyc *models.KYCProfile, name string) []string {
	switch v := kyc.GetValue(name).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
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

// upsertAuto creates the automatic placeholder organisation, keyed so
// two concurrent registrations declaring the same attributes converge
// on one row.
func (r *OrgResolver) upsertAuto(tx *gorm.DB, org *models.Organisation) (*models.Organisation, error) {
	key := AutoKey(org)
	org.CompositeKey = &key
	err := tx.Create(org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create auto organisation %q: %w", org.Name, err)
	}
	var existing models.Organisation
	if err := tx.Unscoped().Where("composite_key = ?", key).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("reread auto organisation %q: %w", org.Name, err)
	}
	// A collected placeholder still holds the key, revive it.
	if existing.DeletedAt.Valid {
		existing.DeletedAt = gorm.DeletedAt{}
		if err := tx.Unscoped().Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("revive auto organisation %q: %w", org.Name, err)
		}
	}
	return &existing, nil
}

// collect drops an automatic organisation once its last member left.
func (r *OrgResolver) collect(tx *gorm.DB, orgID *uint, leavingUserID uint) error {
	if orgID == nil {
		return nil
	}
	var org models.Organisation
	if err := tx.First(&org, *orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !org.IsAuto() {
		return nil
	}
	var members int64
	err := tx.Model(&models.User{}).
		Where("organisation_id = ? AND id <> ?", org.ID, leavingUserID).
		Count(&members).Error
	if err != nil {
		return err
	}
	if members > 0 {
		return nil
	}
	return tx.Delete(&org).Error
}

// Names returns the live organisation names merged into one vocabulary
// family, matching the forms.OrgNameSource contract.
func (r *OrgResolver) Names(family string) ([]string, error) {
	query := r.db.Model(&models.Organisation{})
	if orgType, ok := familyOrgTypes[family]; ok {
		query = query.Where("type IN ?", []string{orgType, models.OrgTypeAuto})
	}
	var names []string
	if err := query.Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("organisation names for %q: %w", family, err)
	}
	return names, nil
}

// AutoKey is the dedup key of automatic organisations: a digest over
// the normalized identity attributes.
func AutoKey(org *models.Organisation) string {
	parts := []string{
		org.Name,
		org.SecteursActivite,
		org.TypeOrganisation,
		org.TailleOrga,
		org.PaysZipVille,
		org.PaysZipVilleDetail,
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(part), " "))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
