package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxWindows caps the number of windows accepted in one scene.
const MaxWindows = 4096

// ValidateRatio checks that a main-pane ratio is a number in [0, 1].
//
// The layout algorithm accepts any ratio; this check is applied by the outer
// entry points so that users never reach the degenerate geometry produced by
// ratios outside the unit interval.
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return New(ErrCodeInvalidRatio, "main pane ratio must be a finite number")
	}
	if ratio < 0 || ratio > 1 {
		return New(ErrCodeInvalidRatio, "main pane ratio %g outside [0, 1]", ratio)
	}
	return nil
}

// ValidatePaneCount checks that a main-pane count is at least 1.
func ValidatePaneCount(count int) error {
	if count < 1 {
		return New(ErrCodeInvalidPaneCount, "main pane count must be at least 1, got %d", count)
	}
	return nil
}

// ValidateScreen checks that a screen region has a finite origin and a
// positive finite size.
func ValidateScreen(x, y, width, height float64) error {
	for _, v := range []float64{x, y, width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidScreen, "screen frame must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidScreen, "screen size must be positive, got %gx%g", width, height)
	}
	return nil
}

// ValidateWorkspaceKey validates a workspace key used to persist pane
// configuration. Keys end up in file names and database keys, so the rules
// are conservative:
//   - No empty keys
//   - Maximum length of 128 characters
//   - Only letters, digits, '-', '_', '.' and ':'
//   - No path traversal sequences
func ValidateWorkspaceKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidWorkspace, "workspace key cannot be empty")
	}
	if len(key) > 128 {
		return New(ErrCodeInvalidWorkspace, "workspace key too long (max 128 characters)")
	}
	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidWorkspace, "workspace key cannot contain path traversal sequences (..)")
	}
	for _, r := range key {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return New(ErrCodeInvalidWorkspace, "workspace key contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateWindowIDs checks a window set for identifiers that cannot be
// carried through a layout: empty or duplicate IDs, control characters, or
// more than MaxWindows entries. An empty list is valid.
func ValidateWindowIDs(ids []string) error {
	if len(ids) > MaxWindows {
		return New(ErrCodeInvalidWindow, "too many windows (max %d)", MaxWindows)
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return New(ErrCodeInvalidWindow, "window %d has an empty id", i)
		}
		for _, r := range id {
			if unicode.IsControl(r) {
				return New(ErrCodeInvalidWindow, "window %q contains control characters", id)
			}
		}
		if _, dup := seen[id]; dup {
			return New(ErrCodeInvalidWindow, "duplicate window id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
