package loader

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes YAML documents.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     errors.Wrap(err, "decode yaml"),
		}
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
