package repo

import (
	"strings"

	"github.com/matzehuels/depsize/pkg/maven"
)

// File extensions for the two document kinds served per artifact version.
const (
	ManifestExt = ".pom"
	ArtifactExt = ".jar"
)

// ManifestURL builds the manifest location for a coordinate under a
// repository base URL:
//
//	<base>/<group dots as slashes>/<artifact>/<version>/<artifact>-<version>.pom
//
// The group's case is preserved; only dots become path separators.
func ManifestURL(base string, coord maven.Coordinate) string {
	groupPath := strings.ReplaceAll(coord.GroupID, ".", "/")
	return strings.TrimRight(base, "/") + "/" +
		groupPath + "/" +
		coord.ArtifactID + "/" +
		coord.Version + "/" +
		coord.ArtifactID + "-" + coord.Version + ManifestExt
}

// ArtifactURL derives the binary artifact location from a manifest location
// by swapping the manifest extension for the artifact extension.
func ArtifactURL(manifestURL string) string {
	return strings.TrimSuffix(manifestURL, ManifestExt) + ArtifactExt
}
