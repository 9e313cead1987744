package extract

import (
	"fmt"
	"strconv"

	"github.com/akorchak/metapull/internal/models"
)

// MappingError indicates a single malformed search entity. The rest of the
// batch is unaffected.
type MappingError struct {
	Kind   string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map %s entity: %s", e.Kind, e.Reason)
}

// MapConnection flattens one raw search entity into a ConnectionRecord.
// Absent fields default to the empty string.
func MapConnection(entity any) (models.ConnectionRecord, error) {
	obj, ok := entity.(map[string]any)
	if !ok {
		return models.ConnectionRecord{}, &MappingError{
			Kind:   "connection",
			Reason: fmt.Sprintf("entity is %T, expected an object", entity),
		}
	}

	attrs := attributesOf(obj)
	return models.ConnectionRecord{
		Name:          stringField(attrs, "name"),
		QualifiedName: stringField(attrs, "qualifiedName"),
		ConnectorName: stringField(attrs, "connectorName"),
		Category:      stringField(attrs, "category"),
		CreatedBy:     stringField(obj, "createdBy"),
		UpdatedBy:     stringField(obj, "updatedBy"),
		CreateTime:    stringField(obj, "createTime"),
		UpdateTime:    stringField(obj, "updateTime"),
	}, nil
}

// MapDatabase flattens one raw search entity into a DatabaseRecord owned by
// the given parent connection. ConnectionQualifiedName always comes from
// the caller, never from the entity.
func MapDatabase(entity any, connectionQualifiedName string) (models.DatabaseRecord, error) {
	obj, ok := entity.(map[string]any)
	if !ok {
		return models.DatabaseRecord{}, &MappingError{
			Kind:   "database",
			Reason: fmt.Sprintf("entity is %T, expected an object", entity),
		}
	}

	attrs := attributesOf(obj)
	return models.DatabaseRecord{
		ConnectionQualifiedName: connectionQualifiedName,
		TypeName:                stringField(obj, "typeName"),
		QualifiedName:           stringField(attrs, "qualifiedName"),
		Name:                    stringField(attrs, "name"),
		CreatedBy:               stringField(obj, "createdBy"),
		UpdatedBy:               stringField(obj, "updatedBy"),
		CreateTime:              stringField(obj, "createTime"),
		UpdateTime:              stringField(obj, "updateTime"),
	}, nil
}

func attributesOf(obj map[string]any) map[string]any {
	if attrs, ok := obj["attributes"].(map[string]any); ok {
		return attrs
	}
	return nil
}

// stringField renders a field as a string. Upstream timestamps arrive as
// epoch-millisecond numbers and are passed through untyped; anything
// missing or structured becomes the empty string.
func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	switch v := obj[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
