package models

import "gorm.io/datatypes"

// ContactTypes are the audience facets toggling contact detail exposure.
var ContactTypes = []string{
	"JOURNALISTE",
	"COMMUNICANT",
	"EXPERT",
	"TRANSFORMER",
	"ACADEMIC",
	"ETUDIANT",
}

// InfoPersonnelleKeys is the closed key set of the info_personnelle document.
var InfoPersonnelleKeys = map[string]any{
	"langues":                 []string{},
	"competences":             []string{},
	"competences_journalisme": []string{},
	"experiences":             "",
	"formations":              "",
	"metier_principal":        []string{},
	"metier_principal_detail": []string{},
	"metier":                  []string{},
	"metier_detail":           []string{},
}

// InfoProfessionnelleKeys is the closed key set of the info_professionnelle
// document. It includes the organisation name fields and the address triple.
var InfoProfessionnelleKeys = map[string]any{
	"adresse_pro":                        "",
	"compl_adresse_pro":                  "",
	"ligne_directe":                      "",
	"tel_standard":                       "",
	"nom_adm":                            "",
	"nom_agence_rp":                      "",
	"nom_group_com":                      "",
	"nom_groupe_presse":                  "",
	"nom_media":                          []string{},
	"nom_media_instit":                   "",
	"nom_orga":                           "",
	"pays_zip_ville":                     "",
	"pays_zip_ville_detail":              []string{},
	"taille_orga":                        "",
	"type_agence_rp":                     []string{},
	"type_media":                         []string{},
	"type_orga":                          []string{},
	"type_orga_detail":                   []string{},
	"type_presse_et_media":               []string{},
	"type_entreprise_media":              []string{},
	"url_site_web":                       "",
	"secteurs_activite_detailles":        []string{},
	"secteurs_activite_detailles_detail": []string{},
	"secteurs_activite_medias":           []string{},
	"secteurs_activite_medias_detail":    []string{},
	"secteurs_activite_rp":               []string{},
	"secteurs_activite_rp_detail":        []string{},
}

// MatchMakingKeys is the closed key set of the match_making document.
var MatchMakingKeys = map[string]any{
	"fonctions_journalisme":         []string{},
	"fonctions_ass_syn":             []string{},
	"fonctions_ass_syn_detail":      []string{},
	"fonctions_org_priv":            []string{},
	"fonctions_org_priv_detail":     []string{},
	"fonctions_pol_adm":             []string{},
	"fonctions_pol_adm_detail":      []string{},
	"interet_ass_syn":               []string{},
	"interet_ass_syn_detail":        []string{},
	"interet_org_priv":              []string{},
	"interet_org_priv_detail":       []string{},
	"interet_pol_adm":               []string{},
	"interet_pol_adm_detail":        []string{},
	"transformation_majeure":        []string{},
	"transformation_majeure_detail": []string{},
}

// InfoHobbyKeys is the closed key set of the info_hobby document.
var InfoHobbyKeys = map[string]any{
	"hobbies":             "",
	"macaron_hebergement": false,
	"macaron_repas":       false,
	"macaron_verre":       false,
}

// BusinessWallKeys lists the business wall trigger booleans in fixed order.
var BusinessWallKeys = []string{
	"trigger_academics",
	"trigger_academics_entrepreneur",
	"trigger_media_agence_de_presse",
	"trigger_media_media",
	"trigger_organization",
	"trigger_pr",
	"trigger_pr_independant",
	"trigger_transformers",
}

// DefaultShowContactDetails returns the mobile/email exposure flags, all off.
func DefaultShowContactDetails() datatypes.JSONMap {
	doc := datatypes.JSONMap{}
	for _, ct := range ContactTypes {
		doc["mobile_"+ct] = false
		doc["email_"+ct] = false
	}
	return doc
}

func DefaultInfoPersonnelle() datatypes.JSONMap     { return defaults(InfoPersonnelleKeys) }
func DefaultInfoProfessionnelle() datatypes.JSONMap { return defaults(InfoProfessionnelleKeys) }
func DefaultMatchMaking() datatypes.JSONMap         { return defaults(MatchMakingKeys) }
func DefaultInfoHobby() datatypes.JSONMap           { return defaults(InfoHobbyKeys) }

func DefaultBusinessWall() datatypes.JSONMap {
	doc := datatypes.JSONMap{}
	for _, key := range BusinessWallKeys {
		doc[key] = false
	}
	return doc
}

func defaults(keys map[string]any) datatypes.JSONMap {
	doc := make(datatypes.JSONMap, len(keys))
	for k, zero := range keys {
		switch zero.(type) {
		case []string:
			doc[k] = []string{}
		default:
			doc[k] = zero
		}
	}
	return doc
}

// NewKYCProfile returns a profile with all five sub-documents at their
// default (closed) key sets.
func NewKYCProfile() *KYCProfile {
	return &KYCProfile{
		ShowContactDetails:  DefaultShowContactDetails(),
		InfoPersonnelle:     DefaultInfoPersonnelle(),
		InfoProfessionnelle: DefaultInfoProfessionnelle(),
		MatchMaking:         DefaultMatchMaking(),
		InfoHobby:           DefaultInfoHobby(),
		BusinessWall:        DefaultBusinessWall(),
	}
}

// SubDocNameFor returns the name of the sub-document owning a field key,
// or "" when no document claims it.
func SubDocNameFor(name string) string {
	for _, ct := range ContactTypes {
		if name == "mobile_"+ct || name == "email_"+ct {
			return "show_contact_details"
		}
	}
	if _, ok := InfoPersonnelleKeys[name]; ok {
		return "info_personnelle"
	}
	if _, ok := InfoProfessionnelleKeys[name]; ok {
		return "info_professionnelle"
	}
	if _, ok := MatchMakingKeys[name]; ok {
		return "match_making"
	}
	if _, ok := InfoHobbyKeys[name]; ok {
		return "info_hobby"
	}
	for _, key := range BusinessWallKeys {
		if name == key {
			return "business_wall"
		}
	}
	return ""
}
