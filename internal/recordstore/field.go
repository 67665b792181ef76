package recordstore

import (
	"strings"
)

// FieldType is the logical type of a record field, derived from the column's
// database type.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeBoolean     FieldType = "BOOLEAN"
	FieldTypeDateTime    FieldType = "DATE_TIME"
	FieldTypeUUID        FieldType = "UUID"
	FieldTypeSelect      FieldType = "SELECT"
	FieldTypeMultiSelect FieldType = "MULTI_SELECT"
	FieldTypeRawJSON     FieldType = "RAW_JSON"
)

// FieldMetadata describes where a field lives.
type FieldMetadata struct {
	FieldName          string
	ObjectNameSingular string
	Nullable           bool
	Options            []string // allowed values for SELECT fields
}

// FieldDefinition is the UI-facing description of a column.
type FieldDefinition struct {
	FieldMetadataID string // "<table>.<column>", unique per database
	Label           string
	Type            FieldType
	Metadata        FieldMetadata
	ReadOnly        bool // key and generated columns
}

// fieldTypeFromSQL maps a database column type onto a field type.
func fieldTypeFromSQL(sqlType string) FieldType {
	t := strings.ToLower(sqlType)
	switch {
	case t == "":
		return FieldTypeText
	case strings.HasPrefix(t, "enum"):
		return FieldTypeSelect
	case strings.HasPrefix(t, "set("):
		return FieldTypeMultiSelect
	case t == "uuid":
		return FieldTypeUUID
	case strings.Contains(t, "json"):
		return FieldTypeRawJSON
	case strings.Contains(t, "bool"), t == "tinyint(1)":
		return FieldTypeBoolean
	case strings.Contains(t, "time"), strings.Contains(t, "date"):
		return FieldTypeDateTime
	case strings.Contains(t, "int"), strings.Contains(t, "real"),
		strings.Contains(t, "floa"), strings.Contains(t, "doub"),
		strings.Contains(t, "numeric"), strings.Contains(t, "decimal"):
		return FieldTypeNumber
	}
	return FieldTypeText
}

// enumOptions extracts the values of a MySQL enum('a','b') or set('a','b') type.
func enumOptions(sqlType string) []string {
	open := strings.IndexByte(sqlType, '(')
	end := strings.LastIndexByte(sqlType, ')')
	if open < 0 || end <= open {
		return nil
	}
	var options []string
	for _, part := range strings.Split(sqlType[open+1:end], ",") {
		part = strings.Trim(strings.TrimSpace(part), "'")
		if part != "" {
			options = append(options, part)
		}
	}
	return options
}

// labelize turns a column name like "first_name" into "First name".
func labelize(column string) string {
	label := strings.ReplaceAll(column, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
