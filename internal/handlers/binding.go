package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

// BindNestedOrFlat attempts to bind the request body to obj.
// It first checks if the body contains a nested object with the given key
// (e.g. {"contract": {...}}) and binds that nested object to obj. If the key
// is missing it binds the entire body instead, so clients may send either
// shape.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	// Restore body for future binding or subsequent reads
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var nestedMap map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &nestedMap); err == nil {
		if val, ok := nestedMap[key]; ok {
			return json.Unmarshal(val, obj)
		}
	}

	return json.Unmarshal(bodyBytes, obj)
}

// BodyKeys returns the set of top-level keys present in the request body,
// looking inside the nested object when the given key wraps the payload.
// Partial updates use this to tell an omitted field from one explicitly sent
// as null.
func BodyKeys(c *gin.Context, key string) (map[string]bool, error) {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &outer); err != nil {
		return nil, err
	}

	fields := outer
	if nested, ok := outer[key]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil {
			fields = inner
		}
	}

	keys := make(map[string]bool, len(fields))
	for k := range fields {
		keys[k] = true
	}
	return keys, nil
}
