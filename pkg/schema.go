package pkg

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/package.schema.json
var packageSchemaSource string

//go:embed schemas/tsconfig.schema.json
var tsconfigSchemaSource string

const schemaBaseURL = "https://npm-deploy.sojebsikder.github.io/schemas/"

var (
	packageSchema  = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("package.schema.json", packageSchemaSource) })
	tsconfigSchema = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("tsconfig.schema.json", tsconfigSchemaSource) })
)

func compileSchema(name, source string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaBaseURL+name, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	return c.Compile(schemaBaseURL + name)
}

// ValidateManifest checks the types of every field the manifest patcher
// writes. String contents are not checked.
func ValidateManifest(data []byte) error {
	return validateAgainst(packageSchema, "package.json", data)
}

func ValidateTSConfig(data []byte) error {
	return validateAgainst(tsconfigSchema, "tsconfig.json", data)
}

func validateAgainst(load func() (*jsonschema.Schema, error), label string, data []byte) error {
	sch, err := load()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%s failed validation: %w", label, err)
	}
	return nil
}
