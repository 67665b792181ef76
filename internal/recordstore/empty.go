package recordstore

import (
	"strings"
	"time"
)

// IsFieldValueEmpty reports whether value counts as empty for the field.
// Numbers and booleans are only empty when null; zero and false are values.
func IsFieldValueEmpty(def FieldDefinition, value any) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case []byte:
		value = string(v)
	case time.Time:
		return v.IsZero()
	}

	switch def.Type {
	case FieldTypeNumber, FieldTypeBoolean:
		return false
	case FieldTypeRawJSON, FieldTypeMultiSelect:
		s, ok := value.(string)
		if !ok {
			return false
		}
		switch strings.TrimSpace(s) {
		case "", "null", "[]", "{}":
			return true
		}
		return false
	default:
		s, ok := value.(string)
		if !ok {
			return false
		}
		return strings.TrimSpace(s) == ""
	}
}
