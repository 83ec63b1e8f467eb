// Package maven implements the slice of Maven project semantics needed to
// resolve a transitive dependency tree: coordinates, POM decoding,
// parent-chain flattening, and dependency version resolution.
package maven

import (
	"strings"

	"github.com/matzehuels/depsize/pkg/errors"
)

// Scope is the lifecycle phase a dependency applies to.
type Scope string

// Maven dependency scopes.
const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import"
)

// Ignored reports whether dependencies with this scope are excluded from
// the analyzed tree. Test, provided, and system dependencies do not ship
// with the artifact.
func (s Scope) Ignored() bool {
	switch s {
	case ScopeTest, ScopeProvided, ScopeSystem:
		return true
	}
	return false
}

// Coordinate identifies a published artifact by group, artifact, and version.
// Version may be empty or hold an uninterpolated ${...} placeholder until
// resolution completes.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// Name returns the version-independent identity "groupId:artifactId".
func (c Coordinate) Name() string {
	return c.GroupID + ":" + c.ArtifactID
}

// FullID returns the full identity "groupId:artifactId:version".
func (c Coordinate) FullID() string {
	return c.Name() + ":" + c.Version
}

// ParseCoordinate parses a Gradle-style "groupId:artifactId:version" string.
// All three parts must be present and non-empty; anything else fails with
// INVALID_COORDINATE before any network access happens.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q (expected groupId:artifactId:version)", s)
	}
	return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
}

// Dependency is a coordinate plus an optional scope.
// Identity for deduplication is (group, artifact, version) only; scope is
// not part of identity.
type Dependency struct {
	Coordinate
	Scope Scope
}

// EffectiveScope returns the dependency's scope, defaulting to compile
// when the source document declared none.
func (d Dependency) EffectiveScope() Scope {
	if d.Scope == "" {
		return ScopeCompile
	}
	return d.Scope
}

// IsPlaceholder reports whether v is a property placeholder of the form ${name}.
func IsPlaceholder(v string) bool {
	return strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}")
}

// PlaceholderName extracts the property name from a ${name} placeholder.
// Returns v unchanged if it is not a placeholder.
func PlaceholderName(v string) string {
	if !IsPlaceholder(v) {
		return v
	}
	return v[2 : len(v)-1]
}
