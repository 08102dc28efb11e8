package loader

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// JSONDecoder decodes JSON documents. The top level must be an object.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{
			Path:    source,
			Message: "invalid JSON",
			Err:     errors.New("decode json: invalid document"),
		}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &ParseError{
			Path:    source,
			Message: "top level must be an object, got " + doc.Type.String(),
			Err:     errors.Errorf("decode json: unexpected %s", doc.Type),
		}
	}

	config, _ := doc.Value().(map[string]any)
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
