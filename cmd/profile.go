package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lender-qualify/internal/model"
)

// loadProfile reads a client profile from a JSON or YAML file and validates it.
func loadProfile(path string, now time.Time) (model.ClientProfile, error) {
	var p model.ClientProfile

	data, err := os.ReadFile(path)
	if err != nil {
		return p, eris.Wrapf(err, "read profile %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return p, eris.Wrapf(err, "parse profile %s", path)
		}
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, eris.Wrapf(err, "parse profile %s", path)
	}
	if err := p.Validate(now); err != nil {
		return p, eris.Wrapf(err, "profile %s", path)
	}
	return p, nil
}

// yamlToJSON re-encodes a YAML document as JSON so profile files share the
// snake_case json tags.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "decode yaml")
	}
	for k, v := range doc {
		// Unquoted dates decode as timestamps.
		if t, ok := v.(time.Time); ok {
			doc[k] = t.Format(model.DateLayout)
		}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "encode json")
	}
	return out, nil
}

// toYAML renders v through its JSON form so output keys match the API.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "encode json")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "decode json")
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, eris.Wrap(err, "encode yaml")
	}
	return out, nil
}
