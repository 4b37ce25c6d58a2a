package ontology

// Vocabulary family names as stored in the taxonomies table.
const (
	FamilyCivilite            = "civilite"
	FamilyLangue              = "langue"
	FamilyMetier              = "metier"
	FamilyCompetence          = "competence"
	FamilyCompetenceJour      = "competence_journalisme"
	FamilyJournalismeFonction = "journalisme_fonction"
	FamilyFonctionPolAdm      = "profession_fonction_public"
	FamilyFonctionOrgPriv     = "profession_fonction_prive"
	FamilyFonctionAssSyn      = "profession_fonction_asso"
	FamilyInteretPolAdm       = "interet_politique"
	FamilyInteretOrgPriv      = "interet_organisation"
	FamilyInteretAssSyn       = "interet_asso"
	FamilyTransformation      = "transformation_majeure"
	FamilySecteurDetaille     = "secteur_detaille"
	FamilyNewsSecteur         = "news_secteur"
	FamilySecteurRP           = "secteur_rp"
	FamilyMedia               = "media"
	FamilyAgenceRP            = "agence_rp"
	FamilyGroupeCom           = "groupe_com"
	FamilyGroupePresse        = "groupe_presse"
	FamilyMediaInstit         = "media_instit"
	FamilyOrganisation        = "organisation"
	FamilyAdministration      = "administration"
	FamilyTypeAgenceRP        = "type_agence_rp"
	FamilyTypeMedia           = "media_type"
	FamilyTypeOrganisation    = "type_organisation"
	FamilyTypePresseMedia     = "type_presse_et_media"
	FamilyTypeEntrepriseMedia = "type_entreprise_media"
	FamilyTailleOrganisation  = "taille_organisation"
	FamilyHobbies             = "hobbies"
	FamilyPays                = "pays"
)

// fieldFamilies binds a survey field name to its vocabulary family.
// Free text fields and booleans are absent on purpose.
var fieldFamilies = map[string]string{
	"civilite":                    FamilyCivilite,
	"langues":                     FamilyLangue,
	"metier_principal":            FamilyMetier,
	"metier":                      FamilyMetier,
	"competences":                 FamilyCompetence,
	"competences_journalisme":     FamilyCompetenceJour,
	"fonctions_journalisme":       FamilyJournalismeFonction,
	"fonctions_pol_adm":           FamilyFonctionPolAdm,
	"fonctions_org_priv":          FamilyFonctionOrgPriv,
	"fonctions_ass_syn":           FamilyFonctionAssSyn,
	"interet_pol_adm":             FamilyInteretPolAdm,
	"interet_org_priv":            FamilyInteretOrgPriv,
	"interet_ass_syn":             FamilyInteretAssSyn,
	"transformation_majeure":      FamilyTransformation,
	"secteurs_activite_detailles": FamilySecteurDetaille,
	"secteurs_activite_medias":    FamilyNewsSecteur,
	"secteurs_activite_rp":        FamilySecteurRP,
	"nom_media":                   FamilyMedia,
	"nom_agence_rp":               FamilyAgenceRP,
	"nom_group_com":               FamilyGroupeCom,
	"nom_groupe_presse":           FamilyGroupePresse,
	"nom_media_instit":            FamilyMediaInstit,
	"nom_orga":                    FamilyOrganisation,
	"nom_adm":                     FamilyAdministration,
	"type_agence_rp":              FamilyTypeAgenceRP,
	"type_media":                  FamilyTypeMedia,
	"type_orga":                   FamilyTypeOrganisation,
	"type_presse_et_media":        FamilyTypePresseMedia,
	"type_entreprise_media":       FamilyTypeEntrepriseMedia,
	"taille_orga":                 FamilyTailleOrganisation,
	"hobbies":                     FamilyHobbies,
	"pays_zip_ville":              FamilyPays,
}

// orgNameFamilies are the families that get live organisation names
// merged into their curated list.
var orgNameFamilies = map[string]bool{
	FamilyMedia:        true,
	FamilyAgenceRP:     true,
	FamilyGroupeCom:    true,
	FamilyGroupePresse: true,
	FamilyMediaInstit:  true,
	FamilyOrganisation: true,
}

// FamilyFor returns the vocabulary family of a field name, or "" when the
// field is free text.
func FamilyFor(fieldName string) string {
	return fieldFamilies[fieldName]
}

// MergesOrgNames reports whether live organisation names are merged into
// the family's list.
func MergesOrgNames(family string) bool {
	return orgNameFamilies[family]
}

// CiviliteFromGender is the reverse mapping, used to prefill the edit
// form from the stored gender letter.
func CiviliteFromGender(gender string) string {
	switch gender {
	case "M":
		return "Monsieur"
	case "F":
		return "Madame"
	default:
		return ""
	}
}

// GenderFromCivilite maps the stored civilite value to the single letter
// gender column.
func GenderFromCivilite(civilite string) string {
	switch civilite {
	case "Monsieur":
		return "M"
	case "Madame":
		return "F"
	default:
		return "?"
	}
}
