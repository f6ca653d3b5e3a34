package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stacktile/pkg/errors"
)

// DefaultKey is the layout used when none is configured.
const DefaultKey = TallStackKey

// Info is the static metadata of a registered layout.
type Info struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Paned       bool   `json:"paned"`
}

var registered = []Info{
	{Key: TallStackKey, Name: TallStackName, Description: "", Paned: true},
}

// Registered returns the metadata of every known layout, sorted by key.
func Registered() []Info {
	out := slices.Clone(registered)
	slices.SortFunc(out, func(a, b Info) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Keys returns the keys of every known layout, sorted.
func Keys() []string {
	infos := Registered()
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	return keys
}

// IsKnown reports whether key names a registered layout.
func IsKnown(key string) bool {
	return slices.ContainsFunc(registered, func(i Info) bool { return i.Key == key })
}

// New constructs the layout registered under key with its default
// configuration. An empty key selects [DefaultKey].
func New[W comparable](key string) (Layout[W], error) {
	if key == "" {
		key = DefaultKey
	}
	switch key {
	case TallStackKey:
		return NewTallStack[W](), nil
	default:
		return nil, errors.New(errors.ErrCodeUnknownLayout, "unknown layout %q (known: %v)", key, Keys())
	}
}
