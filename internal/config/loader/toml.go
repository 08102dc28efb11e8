package loader

import (
	stderrors "errors"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// TOMLDecoder decodes TOML documents.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		pe := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     errors.Wrap(err, "decode toml"),
		}
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return nil, pe
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
