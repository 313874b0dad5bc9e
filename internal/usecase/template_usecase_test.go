package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateRequest(specialtyID, hospitalID uint, headers string) *dto.CreateTemplateRequest {
	return &dto.CreateTemplateRequest{
		Title:       "General checkup",
		SpecialtyID: specialtyID,
		HospitalID:  hospitalID,
		Headers:     json.RawMessage(headers),
	}
}

func TestCreateTemplateCountsFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hospital := f.seedHospital(t, "Hospital Central")
	specialty := f.seedSpecialty(t, "Cardiology", hospital.ID)
	admin := f.seedAdmin(t, "admin@example.com", hospital.ID)

	created, err := f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, hospital.ID, `{"name":"string","age":"int"}`), admin)
	require.NoError(t, err)

	assert.Equal(t, 1, created.NumericFields)
	assert.Equal(t, 1, created.AlphanumericFields)
	require.NotNil(t, created.Specialty)
	assert.Equal(t, "Cardiology", created.Specialty.Name)
	assert.JSONEq(t, `{"name":"string","age":"int"}`, string(created.Headers))

	found, err := f.templates.GetTemplate(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, found.Title)
	assert.JSONEq(t, `{"name":"string","age":"int"}`, string(found.Headers))
}

func TestCreateTemplateAcceptsEncodedHeaders(t *testing.T) {
	f := newFixture(t)
	hospital := f.seedHospital(t, "Hospital Central")
	specialty := f.seedSpecialty(t, "Cardiology", hospital.ID)
	admin := f.seedAdmin(t, "admin@example.com", hospital.ID)

	created, err := f.templates.CreateTemplate(context.Background(),
		templateRequest(specialty.ID, hospital.ID, `"{\"weight\":\"int\",\"height\":\"int\"}"`), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, created.NumericFields)
	assert.Zero(t, created.AlphanumericFields)
}

func TestCreateTemplateRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	central := f.seedHospital(t, "Hospital Central")
	north := f.seedHospital(t, "Hospital Norte")
	specialty := f.seedSpecialty(t, "Cardiology", central.ID)
	northSpecialty := f.seedSpecialty(t, "Cardiology", north.ID)
	admin := f.seedAdmin(t, "admin@example.com", central.ID)

	_, err := f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, central.ID, `{"age":"float"}`), admin)
	assert.ErrorIs(t, err, service.ErrUnknownFieldType)

	_, err = f.templates.CreateTemplate(ctx, templateRequest(northSpecialty.ID, north.ID, `{"age":"int"}`), admin)
	assert.ErrorIs(t, err, ErrNotAllowed)

	// A specialty of another hospital cannot back this hospital's template.
	_, err = f.templates.CreateTemplate(ctx, templateRequest(northSpecialty.ID, central.ID, `{"age":"int"}`), admin)
	assert.ErrorIs(t, err, ErrSpecialtyNotFound)
}

func TestTemplateUniquePerSpecialtyAndHospital(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hospital := f.seedHospital(t, "Hospital Central")
	specialty := f.seedSpecialty(t, "Cardiology", hospital.ID)
	admin := f.seedAdmin(t, "admin@example.com", hospital.ID)

	first, err := f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, hospital.ID, `{"age":"int"}`), admin)
	require.NoError(t, err)

	_, err = f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, hospital.ID, `{"name":"string"}`), admin)
	assert.ErrorIs(t, err, ErrTemplateExists)

	require.NoError(t, f.templates.DeleteTemplate(ctx, first.ID, admin))

	second, err := f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, hospital.ID, `{"name":"string"}`), admin)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = f.templates.GetTemplate(ctx, first.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestUpdateTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	central := f.seedHospital(t, "Hospital Central")
	north := f.seedHospital(t, "Hospital Norte")
	specialty := f.seedSpecialty(t, "Cardiology", central.ID)
	admin := f.seedAdmin(t, "admin@example.com", central.ID)
	northAdmin := f.seedAdmin(t, "north@example.com", north.ID)

	created, err := f.templates.CreateTemplate(ctx, templateRequest(specialty.ID, central.ID, `{"age":"int"}`), admin)
	require.NoError(t, err)

	updated, err := f.templates.UpdateTemplate(ctx, created.ID, &dto.UpdateTemplateRequest{
		Headers: json.RawMessage(`{"age":"int","notes":"string","bmi":"int"}`),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "General checkup", updated.Title)
	assert.Equal(t, 2, updated.NumericFields)
	assert.Equal(t, 1, updated.AlphanumericFields)
	assert.NotNil(t, updated.UpdatedAt)

	renamed, err := f.templates.UpdateTemplate(ctx, created.ID, &dto.UpdateTemplateRequest{Title: strPtr("Cardio form")}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Cardio form", renamed.Title)
	assert.Equal(t, 2, renamed.NumericFields)

	// A null schema leaves the stored one in place.
	kept, err := f.templates.UpdateTemplate(ctx, created.ID, &dto.UpdateTemplateRequest{
		Title:   strPtr("Cardio"),
		Headers: json.RawMessage(` null `),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Cardio", kept.Title)
	assert.Equal(t, 2, kept.NumericFields)
	assert.Equal(t, 1, kept.AlphanumericFields)

	_, err = f.templates.UpdateTemplate(ctx, created.ID, &dto.UpdateTemplateRequest{Title: strPtr("Mine")}, northAdmin)
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = f.templates.UpdateTemplate(ctx, created.ID, &dto.UpdateTemplateRequest{Headers: json.RawMessage(`{"x":"bool"}`)}, admin)
	assert.ErrorIs(t, err, service.ErrUnknownFieldType)

	assert.ErrorIs(t, f.templates.DeleteTemplate(ctx, created.ID, northAdmin), ErrNotAllowed)
	assert.ErrorIs(t, f.templates.DeleteTemplate(ctx, 999, admin), ErrTemplateNotFound)
}

func TestGetTemplatesByDoctor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	central := f.seedHospital(t, "Hospital Central")
	north := f.seedHospital(t, "Hospital Norte")
	cardiology := f.seedSpecialty(t, "Cardiology", central.ID)
	neurology := f.seedSpecialty(t, "Neurology", central.ID)
	admin := f.seedAdmin(t, "admin@example.com", central.ID)
	doctor, _ := f.seedDoctor(t, admin, "doc@example.com", cardiology.ID)
	f.seedSpecialty(t, "Cardiology", north.ID)

	cardioTemplate, err := f.templates.CreateTemplate(ctx, templateRequest(cardiology.ID, central.ID, `{"pulse":"int"}`), admin)
	require.NoError(t, err)
	_, err = f.templates.CreateTemplate(ctx, templateRequest(neurology.ID, central.ID, `{"reflexes":"string"}`), admin)
	require.NoError(t, err)

	list, err := f.templates.GetTemplatesByDoctorID(ctx, doctor.Doctor.ID)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, cardioTemplate.ID, list.Templates[0].ID)

	all, err := f.templates.GetTemplates(ctx, uintPtr(central.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	none, err := f.templates.GetTemplates(ctx, uintPtr(north.ID))
	require.NoError(t, err)
	assert.Zero(t, none.Total)

	_, err = f.templates.GetTemplatesByDoctorID(ctx, 999)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
