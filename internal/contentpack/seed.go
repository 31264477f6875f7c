package contentpack

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// DeriveSeed builds the deterministic selection seed for a run: the FNV-1a
// hex digest of the joined parts. Same pack version and type code always
// yields the same seed, so selection output is reproducible across runs.
func DeriveSeed(parts ...string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%016x", h.Sum64())
}

// SeedFor derives the default seed for a manifest and type code.
func (m *Manifest) SeedFor(typeCode string) string {
	return DeriveSeed(m.Package, m.Version, typeCode)
}
