package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
	"hospicloud/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkupScene struct {
	hospital      *entity.Hospital
	admin         *entity.CurrentUser
	doctor        *entity.CurrentUser
	patient       *dto.UserResponse
	patientCaller *entity.CurrentUser
	template      *dto.TemplateResponse
}

func newCheckupScene(t *testing.T, f *fixture) *checkupScene {
	t.Helper()
	s := &checkupScene{hospital: f.seedHospital(t, "Hospital Central")}
	specialty := f.seedSpecialty(t, "Cardiology", s.hospital.ID)
	s.admin = f.seedAdmin(t, "admin@example.com", s.hospital.ID)
	_, s.doctor = f.seedDoctor(t, s.admin, "doc@example.com", specialty.ID)
	s.patient, s.patientCaller = f.seedPatient(t, "ana@example.com", "00112345678")

	var err error
	s.template, err = f.templates.CreateTemplate(context.Background(),
		templateRequest(specialty.ID, s.hospital.ID, `{"pressure":"int","notes":"string"}`), s.admin)
	require.NoError(t, err)
	return s
}

func TestCreateCheckup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newCheckupScene(t, f)

	created, err := f.checkups.CreateCheckup(ctx, &dto.CreateCheckupRequest{
		TemplateID: s.template.ID,
		PatientID:  &s.patient.Patient.ID,
		Data:       json.RawMessage(`{ "pressure": 120, "notes": "stable" }`),
	}, s.doctor)
	require.NoError(t, err)

	assert.Equal(t, s.template.ID, created.TemplateID)
	assert.Equal(t, s.patient.Patient.ID, created.PatientID)
	assert.Equal(t, `{"pressure":120,"notes":"stable"}`, string(created.Data))
	assert.False(t, created.Date.IsZero())

	found, err := f.checkups.GetCheckup(ctx, created.ID, s.doctor)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pressure":120,"notes":"stable"}`, string(found.Data))
	require.NotNil(t, found.Template)
	assert.Equal(t, s.template.Title, found.Template.Title)

	byPatient, err := f.checkups.GetCheckupsByPatientID(ctx, s.patient.Patient.ID, s.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, byPatient.Total)

	byDoctor, err := f.checkups.GetCheckupsByDoctorID(ctx, created.DoctorID, s.doctor)
	require.NoError(t, err)
	assert.Equal(t, 1, byDoctor.Total)
}

func TestCreateCheckupByDocumentNumber(t *testing.T) {
	f := newFixture(t)
	s := newCheckupScene(t, f)

	created, err := f.checkups.CreateCheckup(context.Background(), &dto.CreateCheckupRequest{
		TemplateID:     s.template.ID,
		DocumentNumber: strPtr("00112345678"),
		Data:           json.RawMessage(`{"pressure":118}`),
	}, s.doctor)
	require.NoError(t, err)
	assert.Equal(t, s.patient.Patient.ID, created.PatientID)
}

func TestCreateCheckupRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newCheckupScene(t, f)

	north := f.seedHospital(t, "Hospital Norte")
	northSpecialty := f.seedSpecialty(t, "Cardiology", north.ID)
	northAdmin := f.seedAdmin(t, "north@example.com", north.ID)
	_, northDoctor := f.seedDoctor(t, northAdmin, "north-doc@example.com", northSpecialty.ID)
	_, patientCaller := f.seedPatient(t, "pat@example.com", "00187654321")

	valid := func() *dto.CreateCheckupRequest {
		return &dto.CreateCheckupRequest{
			TemplateID: s.template.ID,
			PatientID:  &s.patient.Patient.ID,
			Data:       json.RawMessage(`{"pressure":120}`),
		}
	}

	tests := []struct {
		name   string
		mutate func(req *dto.CreateCheckupRequest)
		caller *entity.CurrentUser
		want   error
	}{
		{"patient caller", nil, patientCaller, ErrNotAllowed},
		{"admin caller", nil, s.admin, ErrNotAllowed},
		{"template of another hospital", nil, northDoctor, ErrNotAllowed},
		{"unknown template", func(req *dto.CreateCheckupRequest) { req.TemplateID = 999 }, s.doctor, ErrTemplateNotFound},
		{"unknown patient", func(req *dto.CreateCheckupRequest) { req.PatientID = uintPtr(999) }, s.doctor, ErrPatientNotFound},
		{"document of a non patient", func(req *dto.CreateCheckupRequest) {
			req.PatientID = nil
			req.DocumentNumber = strPtr("00100000001")
		}, s.doctor, ErrPatientNotFound},
		{"undeclared field", func(req *dto.CreateCheckupRequest) { req.Data = json.RawMessage(`{"weight":70}`) }, s.doctor, service.ErrUnknownDataField},
		{"wrong type", func(req *dto.CreateCheckupRequest) { req.Data = json.RawMessage(`{"pressure":"high"}`) }, s.doctor, service.ErrInvalidFieldValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			if tt.mutate != nil {
				tt.mutate(req)
			}
			_, err := f.checkups.CreateCheckup(ctx, req, tt.caller)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	list, err := f.checkups.GetCheckupsByPatientID(ctx, s.patient.Patient.ID, s.doctor)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestDeleteCheckup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newCheckupScene(t, f)
	_, otherDoctor := f.seedDoctor(t, s.admin, "other-doc@example.com")

	created, err := f.checkups.CreateCheckup(ctx, &dto.CreateCheckupRequest{
		TemplateID: s.template.ID,
		PatientID:  &s.patient.Patient.ID,
		Data:       json.RawMessage(`{"pressure":120}`),
	}, s.doctor)
	require.NoError(t, err)

	assert.ErrorIs(t, f.checkups.DeleteCheckup(ctx, created.ID, otherDoctor), ErrNotAllowed)
	require.NoError(t, f.checkups.DeleteCheckup(ctx, created.ID, s.doctor))

	_, err = f.checkups.GetCheckup(ctx, created.ID, s.doctor)
	assert.ErrorIs(t, err, ErrCheckupNotFound)
	assert.ErrorIs(t, f.checkups.DeleteCheckup(ctx, created.ID, s.doctor), ErrCheckupNotFound)
}

func TestPatientReadsOnlyOwnCheckups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newCheckupScene(t, f)
	other, otherCaller := f.seedPatient(t, "other@example.com", "00187654321")

	created, err := f.checkups.CreateCheckup(ctx, &dto.CreateCheckupRequest{
		TemplateID: s.template.ID,
		PatientID:  &s.patient.Patient.ID,
		Data:       json.RawMessage(`{"pressure":120}`),
	}, s.doctor)
	require.NoError(t, err)

	found, err := f.checkups.GetCheckup(ctx, created.ID, s.patientCaller)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	own, err := f.checkups.GetCheckupsByPatientID(ctx, s.patient.Patient.ID, s.patientCaller)
	require.NoError(t, err)
	assert.Equal(t, 1, own.Total)

	_, err = f.checkups.GetCheckup(ctx, created.ID, otherCaller)
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = f.checkups.GetCheckupsByPatientID(ctx, s.patient.Patient.ID, otherCaller)
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = f.checkups.GetCheckupsByDoctorID(ctx, created.DoctorID, s.patientCaller)
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = f.checkups.GetCheckupsByPatientID(ctx, s.patient.Patient.ID, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)

	none, err := f.checkups.GetCheckupsByPatientID(ctx, other.Patient.ID, otherCaller)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
}

func TestDeleteTemplateWithCheckups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newCheckupScene(t, f)

	created, err := f.checkups.CreateCheckup(ctx, &dto.CreateCheckupRequest{
		TemplateID: s.template.ID,
		PatientID:  &s.patient.Patient.ID,
		Data:       json.RawMessage(`{"pressure":120}`),
	}, s.doctor)
	require.NoError(t, err)

	assert.ErrorIs(t, f.templates.DeleteTemplate(ctx, s.template.ID, s.admin), ErrTemplateInUse)
	found, err := f.checkups.GetCheckup(ctx, created.ID, s.doctor)
	require.NoError(t, err)
	require.NotNil(t, found.Template)

	require.NoError(t, f.checkups.DeleteCheckup(ctx, created.ID, s.doctor))
	require.NoError(t, f.templates.DeleteTemplate(ctx, s.template.ID, s.admin))
}
