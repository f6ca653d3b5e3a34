package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/geometry"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// Format is a scene document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene file %q (want .json, .yaml, .yml or .toml)", path)
	}
}

// Scene is a request to arrange windows on one screen.
type Scene struct {
	// Layout is the layout key. Empty selects the default layout.
	Layout string `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty" bson:"layout,omitempty"`
	// Screen is the usable screen area.
	Screen geometry.Rect `json:"screen" yaml:"screen" toml:"screen" bson:"screen"`
	// Windows are window identifiers in stacking order.
	Windows []string `json:"windows" yaml:"windows" toml:"windows" bson:"windows"`
	// Panes overrides the pane configuration. When nil the configuration
	// stored for Workspace, or the defaults, apply.
	Panes *layout.PaneConfig `json:"panes,omitempty" yaml:"panes,omitempty" toml:"panes,omitempty" bson:"panes,omitempty"`
	// Workspace names the stored pane configuration to use.
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty" toml:"workspace,omitempty" bson:"workspace,omitempty"`
}

// Validate checks the scene before it is arranged.
func (s Scene) Validate() error {
	if s.Layout != "" && !layout.IsKnown(s.Layout) {
		return errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q (known: %v)", s.Layout, layout.Keys())
	}
	if err := errors.ValidateScreen(s.Screen.X, s.Screen.Y, s.Screen.Width, s.Screen.Height); err != nil {
		return err
	}
	if err := errors.ValidateWindowIDs(s.Windows); err != nil {
		return err
	}
	if s.Panes != nil {
		if err := s.Panes.Validate(); err != nil {
			return err
		}
	}
	if s.Workspace != "" {
		if err := errors.ValidateWorkspaceKey(s.Workspace); err != nil {
			return err
		}
	}
	return nil
}

// LayoutKey returns the layout key with the default applied.
func (s Scene) LayoutKey() string {
	if s.Layout == "" {
		return layout.DefaultKey
	}
	return s.Layout
}

// Read decodes a scene in the given format and validates it.
func Read(r io.Reader, format Format) (Scene, error) {
	var s Scene
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&s)
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.NewDecoder(r).Decode(&s)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys %v", undecoded)
			}
		}
	default:
		return Scene{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
	if err != nil {
		return Scene{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s scene", format)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// ReadFile reads a scene file, picking the format from its extension.
func ReadFile(path string) (Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Scene{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Scene{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Encode writes a scene in the given format.
func Encode(w io.Writer, s Scene, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
}

// WriteFile writes a scene file, picking the format from its extension.
func WriteFile(s Scene, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
