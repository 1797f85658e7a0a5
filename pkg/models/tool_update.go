package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
)

// ToolField is a client-writable column of tools.
type ToolField string

const (
	FieldName             ToolField = "name"
	FieldDescription      ToolField = "description"
	FieldVendor           ToolField = "vendor"
	FieldWebsiteURL       ToolField = "website_url"
	FieldCategoryID       ToolField = "category_id"
	FieldMonthlyCost      ToolField = "monthly_cost"
	FieldActiveUsersCount ToolField = "active_users_count"
	FieldOwnerDepartment  ToolField = "owner_department"
	FieldStatus           ToolField = "status"
)

// UpdatableFields lists the writable fields in column order.
var UpdatableFields = []ToolField{
	FieldName,
	FieldDescription,
	FieldVendor,
	FieldWebsiteURL,
	FieldCategoryID,
	FieldMonthlyCost,
	FieldActiveUsersCount,
	FieldOwnerDepartment,
	FieldStatus,
}

var fieldRules = map[ToolField]string{
	FieldName:             "min=2,max=100",
	FieldDescription:      "max=10000",
	FieldVendor:           "min=1,max=100",
	FieldWebsiteURL:       "url,max=255",
	FieldCategoryID:       "min=1",
	FieldMonthlyCost:      "min=0,max=99999999.99",
	FieldActiveUsersCount: "min=0",
	FieldOwnerDepartment:  "department",
	FieldStatus:           "tool_status",
}

// Column is the tools column backing the field.
func (f ToolField) Column() string {
	return string(f)
}

// Rule is the validator tag a new value must satisfy.
func (f ToolField) Rule() string {
	return fieldRules[f]
}

func (f ToolField) position() int {
	for i, field := range UpdatableFields {
		if field == f {
			return i
		}
	}
	return len(UpdatableFields)
}

// ToolUpdate maps each field the caller wants to change to its new value. Absent fields keep
// their stored value.
type ToolUpdate map[ToolField]any

func (u ToolUpdate) IsEmpty() bool {
	return len(u) == 0
}

// Fields returns the touched fields in column order.
func (u ToolUpdate) Fields() []ToolField {
	fields := make([]ToolField, 0, len(u))
	for field := range u {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].position() < fields[j].position()
	})
	return fields
}

// FieldNames returns the touched field names in column order.
func (u ToolUpdate) FieldNames() []string {
	names := make([]string, 0, len(u))
	for _, field := range u.Fields() {
		names = append(names, string(field))
	}
	return names
}

// ParseToolUpdate decodes a partial update body into typed values. A JSON null counts as absent.
// Values are type checked here; range rules are checked by the caller with Rule.
func ParseToolUpdate(body []byte) (ToolUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.Validation("request body must be a JSON object: %v", err)
	}

	update := ToolUpdate{}
	var unknown []string
	for key, value := range raw {
		field := ToolField(key)
		if _, ok := fieldRules[field]; !ok {
			unknown = append(unknown, key)
			continue
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}

		decoded, err := decodeFieldValue(field, value)
		if err != nil {
			return nil, apperrors.Validation("invalid value for %s: %v", key, err)
		}
		update[field] = decoded
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperrors.Validation("unknown fields: %s", strings.Join(unknown, ", "))
	}

	return update, nil
}

func decodeFieldValue(field ToolField, value json.RawMessage) (any, error) {
	switch field {
	case FieldCategoryID, FieldActiveUsersCount:
		var v int
		err := json.Unmarshal(value, &v)
		return v, err
	case FieldMonthlyCost:
		var v float64
		err := json.Unmarshal(value, &v)
		return v, err
	case FieldOwnerDepartment:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return ParseDepartment(v)
	case FieldStatus:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return ParseToolStatus(v)
	case FieldName, FieldDescription, FieldVendor, FieldWebsiteURL:
		var v string
		err := json.Unmarshal(value, &v)
		return v, err
	default:
		return nil, fmt.Errorf("field %s is not writable", field)
	}
}
