package completion

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/usestring/schemafill/pkg/document"
)

// SchemaFor reflects the type of v into a Schema. Fields without omitempty
// become required, maps become open-ended maps, slices get items schemas and
// time.Time fields get the date-time format. Definitions are inlined, so
// recursive types are not supported.
func SchemaFor(v any) (*Schema, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	reflected := r.Reflect(v)

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshaling reflected schema: %w", err)
	}
	tree, _, err := document.Decode(data, document.JSON)
	if err != nil {
		return nil, fmt.Errorf("decoding reflected schema: %w", err)
	}
	return ParseSchema(tree)
}
