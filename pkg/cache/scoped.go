package cache

import "strings"

// ScopedKeyer namespaces the keys of another Keyer, so that several
// deployments can share one Redis database:
//
//	keyer := NewScopedKeyer(nil, "staging")
//	keyer.ArtifactKey(h, opts) // "staging:artifact:v1:..."
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes every key of inner (the [DefaultKeyer] when nil)
// with scope and a colon. A scope that already ends in a colon is used as is.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope != "" && !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: scope}
}

func (k *ScopedKeyer) ArrangementKey(sceneHash string, opts ArrangementKeyOpts) string {
	return k.prefix + k.inner.ArrangementKey(sceneHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(arrangementHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(arrangementHash, opts)
}
