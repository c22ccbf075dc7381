package importer

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed profile.schema.json
var profileSchemaJSON []byte

var (
	profileSchemaOnce sync.Once
	profileSchema     *gojsonschema.Schema
	profileSchemaErr  error
)

// SchemaError lists every violation found in one document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "profile does not match schema: " + strings.Join(e.Violations, "; ")
}

// ValidateProfile checks a raw document against the embedded profile schema.
func ValidateProfile(raw []byte) error {
	profileSchemaOnce.Do(func() {
		profileSchema, profileSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(profileSchemaJSON))
	})
	if profileSchemaErr != nil {
		return fmt.Errorf("load profile schema: %w", profileSchemaErr)
	}

	result, err := profileSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}
	if result.Valid() {
		return nil
	}

	se := &SchemaError{Violations: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		se.Violations = append(se.Violations, field+": "+desc.Description())
	}
	return se
}
