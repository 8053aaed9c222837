package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BindNestedOrFlat decodes the JSON body into obj. A body wrapped in the resource
// key ({"case": {...}}) is unwrapped first; anything else is decoded as-is. The
// result is then checked against the struct's binding tags.
func BindNestedOrFlat(c *gin.Context, key string, obj any) error {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	payload := body
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			payload = inner
		}
	}

	if err := json.Unmarshal(payload, obj); err != nil {
		return err
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}
