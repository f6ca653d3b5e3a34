package layout

import (
	"testing"

	"github.com/matzehuels/stacktile/pkg/errors"
)

func TestNew(t *testing.T) {
	for _, key := range []string{"", TallStackKey} {
		l, err := New[string](key)
		if err != nil {
			t.Fatalf("New(%q) error = %v", key, err)
		}
		if l.Key() != TallStackKey {
			t.Errorf("New(%q).Key() = %q", key, l.Key())
		}
		if _, ok := l.(PanedLayout); !ok {
			t.Errorf("New(%q) should be a PanedLayout", key)
		}
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New[string]("spiral")
	if !errors.Is(err, errors.ErrCodeUnknownLayout) {
		t.Errorf("New(spiral) error = %v, want UNKNOWN_LAYOUT", err)
	}
}

func TestRegistered(t *testing.T) {
	infos := Registered()
	if len(infos) != 1 {
		t.Fatalf("Registered() = %v", infos)
	}
	if infos[0] != (Info{Key: "tall-stack", Name: "Tall Stack", Paned: true}) {
		t.Errorf("Registered()[0] = %+v", infos[0])
	}

	infos[0].Name = "mutated"
	if Registered()[0].Name != "Tall Stack" {
		t.Error("Registered() must return a copy")
	}
}

func TestKeysAndIsKnown(t *testing.T) {
	if keys := Keys(); len(keys) != 1 || keys[0] != TallStackKey {
		t.Errorf("Keys() = %v", keys)
	}
	if !IsKnown(TallStackKey) {
		t.Error("IsKnown(tall-stack) = false")
	}
	if IsKnown("wide") {
		t.Error("IsKnown(wide) = true")
	}
}
