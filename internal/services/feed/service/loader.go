package service

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	perr "inboxd/internal/platform/errors"
	convdomain "inboxd/internal/services/conversations/domain"

	"gopkg.in/yaml.v3"
)

// Format is a recording file encoding
type Format string

// Supported recording formats
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed recording/events.json
var builtin []byte

// FormatOf picks the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", perr.WithField(perr.Unsupportedf("recording %q: want .json, .yaml or .yml", path), "file")
}

// Load reads a recording from disk. An empty path loads the built-in recording
func Load(path string) ([]convdomain.Event, error) { return LoadAs(path, "") }

// LoadAs is Load with the format forced to f; an empty f goes by the file extension
func LoadAs(path string, f Format) ([]convdomain.Event, error) {
	if path == "" {
		return Builtin()
	}
	f = Format(strings.ToLower(string(f)))
	if f == "" {
		var err error
		if f, err = FormatOf(path); err != nil {
			return nil, err
		}
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open recording %s", path)
	}
	defer fh.Close()
	return Decode(fh, f)
}

// Builtin decodes the recording compiled into the binary
func Builtin() ([]convdomain.Event, error) {
	return Decode(bytes.NewReader(builtin), FormatJSON)
}

// Decode reads a list of events in format f
func Decode(r io.Reader, f Format) ([]convdomain.Event, error) {
	var out []convdomain.Event
	var err error
	switch f {
	case FormatJSON:
		err = perr.WrapIf(json.NewDecoder(r).Decode(&out), perr.ErrorCodeJSON, "decode json recording")
	case FormatYAML:
		if err = yaml.NewDecoder(r).Decode(&out); err == io.EOF {
			err = nil
		}
		err = perr.WrapIf(err, perr.ErrorCodeJSON, "decode yaml recording")
	default:
		return nil, perr.Unsupportedf("recording format %q", f)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []convdomain.Event{}
	}
	return out, nil
}
