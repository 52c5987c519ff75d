package api

import (
	_ "embed"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sells-group/lender-qualify/internal/model"
)

//go:embed profile.schema.json
var profileSchemaJSON string

var profileSchema = gojsonschema.NewStringLoader(profileSchemaJSON)

// validationError carries every problem found in a submitted profile.
type validationError struct {
	Problems []string
}

func (e *validationError) Error() string {
	return "invalid profile"
}

// decodeProfile checks raw against the profile schema and the profile's own
// invariants, then decodes it.
func decodeProfile(raw []byte, now time.Time) (*model.ClientProfile, error) {
	result, err := gojsonschema.Validate(profileSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &validationError{Problems: []string{"body is not valid JSON"}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &validationError{Problems: problems}
	}

	var p model.ClientProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, eris.Wrap(err, "api: decode profile")
	}
	if err := p.Validate(now); err != nil {
		return nil, &validationError{Problems: []string{err.Error()}}
	}
	return &p, nil
}
