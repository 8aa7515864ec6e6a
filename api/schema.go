package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	createEmployeeSchema = mustSchema("schemas/employee_create.json")
	updateEmployeeSchema = mustSchema("schemas/employee_update.json")
)

func mustSchema(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return rs
}

// validatePayload checks body against rs and returns a client-facing message
// for the first problem found, or "" when the body is acceptable.
func validatePayload(ctx context.Context, rs *jsonschema.Schema, body []byte) string {
	if !json.Valid(body) {
		return "Invalid request"
	}
	errs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return "Invalid request"
	}
	if len(errs) == 0 {
		return ""
	}
	e := errs[0]
	path := strings.TrimPrefix(e.PropertyPath, "/")
	if path == "" {
		return e.Message
	}
	return path + ": " + e.Message
}
