package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/survey"
	"github.com/aipress24/kyc-engine/internal/testutil"
)

func field(id, name, typ, description string) *survey.Field {
	return &survey.Field{ID: id, Name: name, Type: typ, Description: description}
}

func testProfile() *survey.Profile {
	return &survey.Profile{
		ID:          "P001",
		Code:        "PM_JR_PIG",
		Description: "Journaliste pigiste",
		Community:   survey.CommunityPressMedia,
		ContactType: "JOURNALISTE",
		Groups: []survey.Group{
			{
				Label: "Votre identité",
				Fields: []survey.GroupField{
					{Field: field("F001", "civilite", "list", "Civilité"), Code: survey.CodeMandatory},
					{Field: field("F002", "first_name", "string", "Prénom"), Code: survey.CodeMandatory},
					{Field: field("F003", "email", "email", "Email"), Code: survey.CodeMandatory},
					{Field: field("F004", "password", "password", "Mot de passe"), Code: survey.CodeMandatory},
					{Field: field("F005", "email_secours", "email", "Email de secours"), Code: survey.CodeOptional},
					{Field: field("F006", "photo", "photo", "Photo de profil"), Code: survey.CodeOptional},
				},
			},
			{
				Label: "Votre activité",
				Fields: []survey.GroupField{
					{Field: field("F007", "nom_media", "listfree", "Nom du média"), Code: survey.CodeMandatory},
					{Field: field("F008", "presentation", "textarea", "Présentation"), Code: survey.CodeOptional},
					{Field: field("F009", "secteurs_activite_medias", "multidual", "Secteurs ; Secteurs détaillés"), Code: survey.CodeOptional},
					{Field: field("F010", "pays_zip_ville", "country", "Pays ; Code postal et ville"), Code: survey.CodeMandatory},
					{Field: field("F011", "metier_principal", "long", "Métier principal ; Précision"), Code: survey.CodeOptional},
				},
			},
		},
	}
}

func newBuilder(t *testing.T, orgNames OrgNameSource) *Builder {
	t.Helper()
	db := testutil.DB(t)
	reg, err := ontology.NewRegistry(db)
	require.NoError(t, err)

	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyCivilite, []ontology.Entry{
		{Value: "Monsieur", Label: "Monsieur"},
		{Value: "Madame", Label: "Madame"},
	}))
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyMedia, []ontology.Entry{
		{Value: "Le Monde", Label: "Le Monde"},
	}))
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyMetier, []ontology.Entry{
		{Value: "JRI", Label: "Journaliste reporter d'images"},
	}))
	require.NoError(t, ontology.SeedFlat(db, ontology.FamilyPays, []ontology.Entry{
		{Value: "FRA", Label: "France"},
		{Value: "BEL", Label: "Belgique"},
	}))
	require.NoError(t, ontology.SeedDual(db, ontology.FamilyNewsSecteur, ontology.DualList{
		Field1: []ontology.Entry{{Value: "AGR", Label: "Agriculture"}},
		Field2: map[string][]ontology.Entry{
			"AGR": {{Value: "Agriculture / Viticulture", Label: "Viticulture"}},
		},
	}))
	require.NoError(t, ontology.SeedTowns(db, "FRA", []ontology.Entry{
		{Value: "FRA / 75001 Paris", Label: "75001 Paris"},
	}))
	return NewBuilder(nil, reg, orgNames)
}

func TestBuildWidgetsAndLabels(t *testing.T) {
	b := newBuilder(t, nil)
	schema, err := b.Build(testProfile(), nil, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, "PM_JR_PIG", schema.ProfileCode)
	assert.Equal(t, survey.CommunityPressMedia, schema.Community)
	require.Len(t, schema.Groups, 2)
	assert.Equal(t, "Votre identité", schema.Groups[0].Label)

	civilite := schema.Field("civilite")
	require.NotNil(t, civilite)
	assert.Equal(t, WidgetSelect, civilite.Widget)
	assert.Equal(t, "Civilité (*)", civilite.Label)
	require.Len(t, civilite.Choices, 2)

	media := schema.Field("nom_media")
	require.NotNil(t, media)
	assert.True(t, media.AllowFree)
	assert.Equal(t, "Nom du média (*)"+tagFree, media.Label)

	presentation := schema.Field("presentation")
	require.NotNil(t, presentation)
	assert.Equal(t, WidgetTextarea, presentation.Widget)
	assert.Equal(t, MaxTextareaLen, presentation.MaxLength)
	assert.Equal(t, "Présentation"+tagMaxChars(MaxTextareaLen), presentation.Label)

	photo := schema.Field("photo")
	require.NotNil(t, photo)
	assert.Equal(t, "Photo de profil"+tagPhoto, photo.Label)

	secteurs := schema.Field("secteurs_activite_medias")
	require.NotNil(t, secteurs)
	assert.Equal(t, WidgetDualSelect, secteurs.Widget)
	assert.True(t, secteurs.Dual)
	assert.Equal(t, "Secteurs détaillés", secteurs.Label2)
	require.Len(t, secteurs.Choices2["AGR"], 1)

	metier := schema.Field("metier_principal")
	require.NotNil(t, metier)
	assert.Equal(t, WidgetDetail, metier.Widget)
	assert.Equal(t, "Précision", metier.Label2)
}

func TestBuildModeEditionDropsCredentials(t *testing.T) {
	b := newBuilder(t, nil)
	schema, err := b.Build(testProfile(), nil, BuildOptions{ModeEdition: true})
	require.NoError(t, err)

	assert.Nil(t, schema.Field("email"))
	assert.Nil(t, schema.Field("password"))
	// The rescue email is a normal field and stays editable.
	assert.NotNil(t, schema.Field("email_secours"))
}

func TestBuildMergesOrganisationNames(t *testing.T) {
	b := newBuilder(t, func(family string) ([]string, error) {
		if family == ontology.FamilyMedia {
			return []string{"AFP", "le monde"}, nil
		}
		return nil, nil
	})
	schema, err := b.Build(testProfile(), nil, BuildOptions{})
	require.NoError(t, err)

	media := schema.Field("nom_media")
	require.Len(t, media.Choices, 2)
	assert.Equal(t, "Le Monde", media.Choices[0].Value)
	assert.Equal(t, "AFP", media.Choices[1].Value)
}

func TestBuildPrefillAndCountryTowns(t *testing.T) {
	b := newBuilder(t, nil)
	prefill := map[string]any{
		"first_name":            "Jeanne",
		"pays_zip_ville":        "FRA",
		"pays_zip_ville_detail": "FRA / 75001 Paris",
	}
	schema, err := b.Build(testProfile(), prefill, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Jeanne", schema.Field("first_name").Value)

	pays := schema.Field("pays_zip_ville")
	assert.Equal(t, "FRA", pays.Value)
	assert.Equal(t, "FRA / 75001 Paris", pays.Value2)
	require.Len(t, pays.Choices2["FRA"], 1)
}

func TestBuildReadOnly(t *testing.T) {
	b := newBuilder(t, nil)
	schema, err := b.Build(testProfile(), nil, BuildOptions{ReadOnly: true})
	require.NoError(t, err)

	assert.True(t, schema.ReadOnly)
	for _, name := range schema.FieldNames() {
		assert.True(t, schema.Field(name).ReadOnly, name)
	}

	// Nothing is required on a review form, and labels lose their
	// mandatory marker.
	civilite := schema.Field("civilite")
	require.NotNil(t, civilite)
	assert.False(t, civilite.Required)
	assert.Equal(t, "Civilité", civilite.Label)
	for _, name := range schema.FieldNames() {
		assert.False(t, schema.Field(name).Required, name)
		assert.NotContains(t, schema.Field(name).Label, tagRequired, name)
	}
}
