package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is bumped whenever the encoding of arrangements or artifacts
// changes, so entries written by older builds are never read back.
const keyVersion = "v1"

// Keyer builds cache keys. Implementations may namespace keys, see
// [ScopedKeyer].
type Keyer interface {
	// ArrangementKey identifies the frames computed for a scene.
	ArrangementKey(sceneHash string, opts ArrangementKeyOpts) string

	// ArtifactKey identifies one rendered output of an arrangement.
	ArtifactKey(arrangementHash string, opts ArtifactKeyOpts) string
}

// ArrangementKeyOpts holds the inputs besides the scene that change the
// computed frames.
type ArrangementKeyOpts struct {
	Layout        string  `json:"layout"`
	MainPaneCount int     `json:"main_pane_count"`
	MainPaneRatio float64 `json:"main_pane_ratio"`
}

// ArtifactKeyOpts holds the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	View     string  `json:"view"`
	Detailed bool    `json:"detailed"`
	MaxWidth float64 `json:"max_width"`
	Labels   bool    `json:"labels"`
}

// DefaultKeyer produces unscoped keys of the form "kind:v1:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArrangementKey hashes the scene hash together with the pane options.
func (DefaultKeyer) ArrangementKey(sceneHash string, opts ArrangementKeyOpts) string {
	return hashKey("arrangement", sceneHash, opts)
}

// ArtifactKey hashes the arrangement hash together with the render options.
func (DefaultKeyer) ArtifactKey(arrangementHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", arrangementHash, opts)
}

var _ Keyer = DefaultKeyer{}

// hashKey joins kind, the key version and the SHA-256 of the JSON-encoded
// parts. Parts are plain strings and option structs, which always encode.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + keyVersion + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
