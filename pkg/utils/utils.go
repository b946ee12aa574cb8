// Package utils holds helpers shared by the command line and the engine.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromConfig reflects config into an indented JSON schema with all
// definitions inlined.
func GetSchemaFromConfig(config any) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	schema, err := json.MarshalIndent(r.Reflect(config), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schema), nil
}
