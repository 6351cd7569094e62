package documents

import (
	"encoding/json"

	"github.com/jzx17/gobulk/pkg/types"
)

// MaxItems is the largest number of items accepted in one call
const MaxItems = 1000

// UniqueID asks the server to generate a document ID
const UniqueID = "unique()"

// CreateItem is one document to create
type CreateItem struct {
	DocumentID  string         `json:"documentId"`
	Data        map[string]any `json:"data"`
	Permissions []string       `json:"permissions"`
}

// UpdateItem is one document to update
type UpdateItem struct {
	DocumentID  string         `json:"documentId"`
	Data        map[string]any `json:"data"`
	Permissions []string       `json:"permissions"`
}

// DeleteItem is one document to delete
type DeleteItem struct {
	DocumentID string `json:"documentId"`
}

// ParseCreateItems validates a JSON array of create items. A missing
// documentId defaults to UniqueID and missing permissions to an empty list.
func ParseCreateItems(raw []byte) ([]CreateItem, error) {
	objects, err := parseObjects(raw)
	if err != nil {
		return nil, err
	}

	items := make([]CreateItem, len(objects))
	for i, obj := range objects {
		data, err := dataField(obj, i)
		if err != nil {
			return nil, err
		}

		id, _ := stringField(obj, "documentId")
		if id == "" {
			id = UniqueID
		}

		items[i] = CreateItem{
			DocumentID:  id,
			Data:        data,
			Permissions: permissionsField(obj),
		}
	}
	return items, nil
}

// ParseUpdateItems validates a JSON array of update items
func ParseUpdateItems(raw []byte) ([]UpdateItem, error) {
	objects, err := parseObjects(raw)
	if err != nil {
		return nil, err
	}

	items := make([]UpdateItem, len(objects))
	for i, obj := range objects {
		id, err := documentIDField(obj, i)
		if err != nil {
			return nil, err
		}
		data, err := dataField(obj, i)
		if err != nil {
			return nil, err
		}

		items[i] = UpdateItem{
			DocumentID:  id,
			Data:        data,
			Permissions: permissionsField(obj),
		}
	}
	return items, nil
}

// ParseDeleteItems validates a JSON array of delete items
func ParseDeleteItems(raw []byte) ([]DeleteItem, error) {
	objects, err := parseObjects(raw)
	if err != nil {
		return nil, err
	}

	items := make([]DeleteItem, len(objects))
	for i, obj := range objects {
		id, err := documentIDField(obj, i)
		if err != nil {
			return nil, err
		}
		items[i] = DeleteItem{DocumentID: id}
	}
	return items, nil
}

// parseObjects enforces the shape shared by every item kind: a non-empty
// array of at most MaxItems JSON objects
func parseObjects(raw []byte) ([]map[string]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil, types.NewValidationError("items", "Batch items must be an array")
	}
	if len(elems) == 0 {
		return nil, types.NewValidationError("items", "Batch items array cannot be empty")
	}
	if len(elems) > MaxItems {
		return nil, types.NewValidationError("items", "Cannot process more than %d items in a single batch", MaxItems)
	}

	objects := make([]map[string]json.RawMessage, len(elems))
	for i, elem := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, types.NewValidationError("items", "Item at index %d must be an object", i)
		}
		objects[i] = obj
	}
	return objects, nil
}

func dataField(obj map[string]json.RawMessage, index int) (map[string]any, error) {
	var data map[string]any
	raw, ok := obj["data"]
	if !ok || json.Unmarshal(raw, &data) != nil || data == nil {
		return nil, types.NewValidationError("items", "Item at index %d must have a 'data' property that is an object", index)
	}
	return data, nil
}

func documentIDField(obj map[string]json.RawMessage, index int) (string, error) {
	id, ok := stringField(obj, "documentId")
	if !ok || id == "" {
		return "", types.NewValidationError("items", "Item at index %d must have a 'documentId' property that is a string", index)
	}
	return id, nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// permissionsField returns the item's permission strings, or an empty list
// when they are absent or malformed
func permissionsField(obj map[string]json.RawMessage) []string {
	perms := []string{}
	if raw, ok := obj["permissions"]; ok {
		var parsed []string
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed != nil {
			perms = parsed
		}
	}
	return perms
}
