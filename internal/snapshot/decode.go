package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Format identifies the snapshot encoding.
type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
)

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: %w (want .toml, .yaml or .yml)", path, ErrUnsupportedFormat)
	}
}

// Decode parses content in the given format.
func Decode(content []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(content), &doc)
		if err != nil {
			return nil, err
		}
		for _, key := range meta.Undecoded() {
			// таблицы throws разбирает ThrowsEntry.UnmarshalTOML
			if len(key) > 2 && key[0] == "function" && key[1] == "throws" {
				continue
			}
			return nil, fmt.Errorf("unknown key %s", key)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	if doc.Version > SchemaVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", doc.Version, SchemaVersion)
	}
	return &doc, nil
}
