package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type sampleConfig struct {
	Name    string   `json:"name" jsonschema:"description=Plan name"`
	Amount  float64  `json:"amount" jsonschema:"default=1000"`
	Enabled bool     `json:"enabled"`
	Tags    []string `json:"tags,omitempty"`
}

type nestedConfig struct {
	ID     string       `json:"id"`
	Config sampleConfig `json:"config"`
}

func (suite *UtilsTestSuite) decode(schema string) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &out))

	return out
}

func (suite *UtilsTestSuite) TestInlinesDefinitions() {
	schema, err := GetSchemaFromConfig(nestedConfig{})
	suite.Require().NoError(err)

	result := suite.decode(schema)
	suite.Contains(result, "$schema")
	suite.NotContains(result, "$ref")
	suite.NotContains(result, "$defs")

	props, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(props, "config")

	config, ok := props["config"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(config, "properties")
}

func (suite *UtilsTestSuite) TestTagsCarried() {
	schema, err := GetSchemaFromConfig(&sampleConfig{})
	suite.Require().NoError(err)

	props := suite.decode(schema)["properties"].(map[string]any)
	name := props["name"].(map[string]any)
	suite.Equal("Plan name", name["description"])

	amount := props["amount"].(map[string]any)
	suite.InDelta(1000.0, amount["default"], 1e-9)
}

func (suite *UtilsTestSuite) TestIndented() {
	schema, err := GetSchemaFromConfig(sampleConfig{})
	suite.Require().NoError(err)
	suite.Contains(schema, "\n  \"")
}
