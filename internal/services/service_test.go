package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/survey"
	"github.com/aipress24/kyc-engine/internal/testutil"
)

// recordingDispatcher captures events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (d *recordingDispatcher) Dispatch(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, e := range d.events {
		out = append(out, e.Name)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	model    *survey.Model
	registry *ontology.Registry
	blobs    *blobs.Store
	profiles *ProfileService
	orgs     *OrgResolver
	commit   *CommitService
	admin    *AdminService
	vis      *VisibilityService
	events   *recordingDispatcher
}

func surveyField(id, name, typ, description string) *survey.Field {
	return &survey.Field{ID: id, Name: name, Type: typ, Description: description}
}

func testModel() *survey.Model {
	email := surveyField("F004", "email", "email", "Email")
	email.ValidateChanges = true
	email.PublicDefault = true
	email.PublicMaxi = true

	media := surveyField("F009", "nom_media", "listfree", "Nom du média")
	media.ValidateChanges = true
	media.IsOrganisation = true
	media.PublicMini = true
	media.PublicDefault = true
	media.PublicMaxi = true

	firstName := surveyField("F002", "first_name", "string", "Prénom")
	firstName.PublicMini = true
	firstName.PublicDefault = true
	firstName.PublicMaxi = true

	pays := surveyField("F010", "pays_zip_ville", "country", "Pays ; Code postal et ville")
	pays.PublicMini = true
	pays.PublicDefault = true
	pays.PublicMaxi = true

	presentation := surveyField("F011", "presentation", "textarea", "Présentation")
	presentation.PublicDefault = true
	presentation.PublicMaxi = true

	langues := surveyField("F012", "langues", "multifree", "Langues")
	langues.PublicMaxi = true

	telMobile := surveyField("F006", "tel_mobile", "tel", "Téléphone mobile")
	telMobile.PublicDefault = true
	telMobile.PublicMaxi = true

	photo := surveyField("F007", "photo", "photo", "Photo de profil")
	photo.PublicMini = true
	photo.PublicDefault = true
	photo.PublicMaxi = true

	profile := &survey.Profile{
		ID:          "P001",
		Code:        "PM_JR_PIG",
		Description: "Journaliste pigiste",
		Community:   survey.CommunityPressMedia,
		ContactType: "JOURNALISTE",
		Groups: []survey.Group{
			{
				Label: "Votre identité",
				Fields: []survey.GroupField{
					{Field: surveyField("F001", "civilite", "list", "Civilité"), Code: survey.CodeMandatory},
					{Field: firstName, Code: survey.CodeMandatory},
					{Field: surveyField("F003", "last_name", "string", "Nom"), Code: survey.CodeMandatory},
					{Field: email, Code: survey.CodeMandatory},
					{Field: surveyField("F005", "password", "password", "Mot de passe"), Code: survey.CodeMandatory},
					{Field: telMobile, Code: survey.CodeOptional},
					{Field: photo, Code: survey.CodeOptional},
					{Field: surveyField("F008", "gcu_acceptation", "boolean", "J'accepte les CGU"), Code: survey.CodeMandatory},
				},
			},
			{
				Label: "Votre activité",
				Fields: []survey.GroupField{
					{Field: media, Code: survey.CodeMandatory},
					{Field: pays, Code: survey.CodeMandatory},
					{Field: presentation, Code: survey.CodeOptional},
					{Field: langues, Code: survey.CodeOptional},
				},
			},
		},
	}
	return &survey.Model{Profiles: []*survey.Profile{profile}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)

	registry, err := ontology.NewRegistry(db)
	require.NoError(t, err)
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyCivilite, []ontology.Entry{
		{Value: "Monsieur", Label: "Monsieur"},
		{Value: "Madame", Label: "Madame"},
	}))
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyPays, []ontology.Entry{
		{Value: "FRA", Label: "France"},
		{Value: "BEL", Label: "Belgique"},
	}))
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyMedia, []ontology.Entry{
		{Value: "Le Monde", Label: "Le Monde"},
	}))

	model := testModel()
	orgs := NewOrgResolver(db)
	builder := forms.NewBuilder(model, registry, orgs.Names)
	store := blobs.NewStore(db)
	profiles := NewProfileService(db)
	clones := NewCloneService(db)
	events := &recordingDispatcher{}

	return &fixture{
		db:       db,
		model:    model,
		registry: registry,
		blobs:    store,
		profiles: profiles,
		orgs:     orgs,
		commit:   NewCommitService(db, model, builder, store, profiles, clones, orgs, events),
		admin:    NewAdminService(db, model, clones, orgs, events),
		vis:      NewVisibilityService(model, registry, profiles),
		events:   events,
	}
}

func registrationValues() map[string]any {
	return map[string]any{
		"civilite":              "Madame",
		"first_name":            "Jeanne",
		"last_name":             "Martin",
		"email":                 "jeanne@example.com",
		"password":              "s3cret-pass!",
		"tel_mobile":            "+33 6 12 34 56 78",
		"gcu_acceptation":       true,
		"nom_media":             "Gazette du Centre",
		"pays_zip_ville":        "FRA",
		"pays_zip_ville_detail": "FRA / 75001 Paris",
		"presentation":          "Pigiste indépendante.",
		"langues":               []string{"Français", "Anglais"},
	}
}
