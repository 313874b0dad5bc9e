package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"hospicloud/internal/domain/entity"
	"hospicloud/pkg/apperror"

	"github.com/shopspring/decimal"
)

var (
	ErrHeadersNotObject  = apperror.Validation("headers must be a JSON object of field names to types")
	ErrUnknownFieldType  = apperror.Validation("header field type must be \"string\" or \"int\"")
	ErrDataNotObject     = apperror.Validation("checkup data must be a JSON object")
	ErrUnknownDataField  = apperror.Validation("checkup data contains a field not declared by the template")
	ErrInvalidFieldValue = apperror.Validation("checkup data value does not match the template field type")
)

// FieldCounts is the number of header fields of each kind.
type FieldCounts struct {
	Numeric      int
	Alphanumeric int
}

// ClassifyHeaders parses a template header schema and counts its numeric and
// alphanumeric fields.
func ClassifyHeaders(headers []byte) (map[string]string, FieldCounts, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(headers, &raw); err != nil || raw == nil {
		return nil, FieldCounts{}, ErrHeadersNotObject
	}

	fields := make(map[string]string, len(raw))
	var counts FieldCounts
	for name, value := range raw {
		kind, ok := value.(string)
		if !ok {
			return nil, FieldCounts{}, ErrUnknownFieldType.Wrap(fmt.Errorf("field %q", name))
		}
		switch kind {
		case entity.FieldTypeInt:
			counts.Numeric++
		case entity.FieldTypeString:
			counts.Alphanumeric++
		default:
			return nil, FieldCounts{}, ErrUnknownFieldType.Wrap(fmt.Errorf("field %q has type %q", name, kind))
		}
		fields[name] = kind
	}

	return fields, counts, nil
}

// ValidateCheckupData checks a checkup payload against the fields declared by
// its template. Fields may be omitted or null.
func ValidateCheckupData(fields map[string]string, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var values map[string]interface{}
	if err := dec.Decode(&values); err != nil || values == nil {
		return ErrDataNotObject
	}

	for name, value := range values {
		kind, ok := fields[name]
		if !ok {
			return ErrUnknownDataField.Wrap(fmt.Errorf("field %q", name))
		}
		if value == nil {
			continue
		}
		switch kind {
		case entity.FieldTypeInt:
			num, ok := value.(json.Number)
			if !ok {
				return ErrInvalidFieldValue.Wrap(fmt.Errorf("field %q must be an integer", name))
			}
			d, err := decimal.NewFromString(num.String())
			if err != nil || !d.IsInteger() {
				return ErrInvalidFieldValue.Wrap(fmt.Errorf("field %q must be an integer", name))
			}
		case entity.FieldTypeString:
			if _, ok := value.(string); !ok {
				return ErrInvalidFieldValue.Wrap(fmt.Errorf("field %q must be a string", name))
			}
		}
	}

	return nil
}
