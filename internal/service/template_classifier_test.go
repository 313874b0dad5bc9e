package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHeaders(t *testing.T) {
	fields, counts, err := ClassifyHeaders([]byte(`{"name":"string","age":"int","weight":"int"}`))
	require.NoError(t, err)

	assert.Equal(t, 2, counts.Numeric)
	assert.Equal(t, 1, counts.Alphanumeric)
	assert.Equal(t, map[string]string{"name": "string", "age": "int", "weight": "int"}, fields)
}

func TestClassifyHeadersEmptyObject(t *testing.T) {
	fields, counts, err := ClassifyHeaders([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.Equal(t, FieldCounts{}, counts)
}

func TestClassifyHeadersRejects(t *testing.T) {
	tests := []struct {
		name    string
		headers string
		want    error
	}{
		{"unknown type", `{"name":"string","age":"float"}`, ErrUnknownFieldType},
		{"non string type", `{"age":1}`, ErrUnknownFieldType},
		{"array", `["name","age"]`, ErrHeadersNotObject},
		{"null", `null`, ErrHeadersNotObject},
		{"malformed", `{"name":`, ErrHeadersNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ClassifyHeaders([]byte(tt.headers))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateCheckupData(t *testing.T) {
	fields := map[string]string{"name": "string", "age": "int"}

	tests := []struct {
		name string
		data string
		want error
	}{
		{"all fields", `{"name":"Ana","age":31}`, nil},
		{"omitted field", `{"name":"Ana"}`, nil},
		{"null value", `{"name":null,"age":31}`, nil},
		{"integral float", `{"age":31.0}`, nil},
		{"fractional", `{"age":31.5}`, ErrInvalidFieldValue},
		{"string for int", `{"age":"31"}`, ErrInvalidFieldValue},
		{"int for string", `{"name":7}`, ErrInvalidFieldValue},
		{"undeclared field", `{"height":170}`, ErrUnknownDataField},
		{"not an object", `[1,2]`, ErrDataNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckupData(fields, []byte(tt.data))
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
