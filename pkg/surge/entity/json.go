package entity

import (
	"github.com/goccy/go-json"
)

// NewJSON marshals v and wraps the result as an
// "application/json;charset=UTF-8" entity.
func NewJSON(v any) (*Bytes, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NewBytes(ContentTypeJSON, data), nil
}
