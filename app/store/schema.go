package store

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Records describes the whole persisted key space, one field per storage key
type Records struct {
	Jobs         []Job         `json:"jobs" jsonschema:"description=job postings with the most recent first"`
	Users        []User        `json:"users"`
	Applications []Application `json:"applications"`
	CurrentUser  *User         `json:"current-user,omitempty" jsonschema:"description=signed in user or absent when signed out"`
}

// Schema generates the JSON schema of persisted records
func Schema() ([]byte, error) {
	schema := jsonschema.Reflect(&Records{})
	schema.Title = "Job Board Storage Schema"
	schema.Description = "Schema for the JSON values kept in job board storage, one property per key"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
