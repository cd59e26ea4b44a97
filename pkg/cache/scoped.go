package cache

import "strings"

// Keyer builds cache keys for catalog images.
type Keyer interface {
	// ImageKey returns the key for the source image of id on catalog.
	ImageKey(catalog, id string) string
}

// DefaultKeyer produces keys of the form "image:<catalog>:<id>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImageKey implements Keyer. The catalog name is lowercased so that
// "www.Amazon.es" and "www.amazon.es" share entries.
func (DefaultKeyer) ImageKey(catalog, id string) string {
	return "image:" + strings.ToLower(catalog) + ":" + id
}

// ScopedKeyer wraps a Keyer with a prefix, so that test runs or separate
// deployments can share one Redis without seeing each other's entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ImageKey generates a prefixed image key.
func (k *ScopedKeyer) ImageKey(catalog, id string) string {
	return k.prefix + k.inner.ImageKey(catalog, id)
}
