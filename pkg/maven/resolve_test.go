package maven

import (
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/depsize/pkg/errors"
)

func concreteProject() *Project {
	return &Project{
		Group:    "org.example",
		Artifact: "app",
		Ver:      "1.0",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "a", "1"}},
			{Coordinate: Coordinate{"g", "b", "2"}, Scope: ScopeTest},
		},
		DependencyManagement: []Dependency{
			{Coordinate: Coordinate{"g", "c", "3"}},
		},
	}
}

func TestResolveVersions_AllConcrete(t *testing.T) {
	p := concreteProject()

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if len(got.Dependencies) != 2 {
		t.Errorf("dependencies changed: %+v", got.Dependencies)
	}
	if got.Dependencies[0] != p.Dependencies[0] || got.Dependencies[1] != p.Dependencies[1] {
		t.Error("concrete dependencies must pass through unchanged")
	}
	if got.DependencyManagement != nil {
		t.Error("dependencyManagement must be cleared after resolution")
	}

	// Resolution is idempotent.
	again, err := ResolveVersions(got, ResolveOptions{})
	if err != nil {
		t.Fatalf("second ResolveVersions failed: %v", err)
	}
	if len(again.Dependencies) != len(got.Dependencies) {
		t.Error("resolving a resolved project must not change it")
	}
}

func TestResolveVersions_FromProperties(t *testing.T) {
	p := &Project{
		Group:      "g",
		Artifact:   "a",
		Ver:        "1.0",
		Properties: map[string]string{"b.version": "2.0"},
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "b", "${b.version}"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "2.0" {
		t.Errorf("version = %s, want 2.0", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_ProjectVersionPlaceholder(t *testing.T) {
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "4.2",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "sibling", "${project.version}"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "4.2" {
		t.Errorf("${project.version} = %s, want 4.2", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_FromManagement(t *testing.T) {
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "1.0",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "b", ""}},
		},
		DependencyManagement: []Dependency{
			{Coordinate: Coordinate{"g", "b", "3.0"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "3.0" {
		t.Errorf("version = %s, want 3.0", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_ManagementPlaceholder(t *testing.T) {
	p := &Project{
		Group:      "g",
		Artifact:   "a",
		Ver:        "1.0",
		Properties: map[string]string{"managed.version": "5.1"},
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "b", ""}},
		},
		DependencyManagement: []Dependency{
			{Coordinate: Coordinate{"g", "b", "${managed.version}"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "5.1" {
		t.Errorf("version = %s, want 5.1", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_ManagementProjectVersion(t *testing.T) {
	// A management entry carrying ${project.version} resolves against the
	// resolving project's own version, never an ancestor's.
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "7.3",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "sibling", ""}},
		},
		DependencyManagement: []Dependency{
			{Coordinate: Coordinate{"g", "sibling", "${project.version}"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "7.3" {
		t.Errorf("version = %s, want 7.3", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_ChildManagementWins(t *testing.T) {
	// After flattening, child management entries precede the parent's;
	// the child definition must win for the same artifact name.
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "1.0",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "b", ""}},
		},
		DependencyManagement: []Dependency{
			{Coordinate: Coordinate{"g", "b", "2.0"}},
			{Coordinate: Coordinate{"g", "b", "9.9"}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if got.Dependencies[0].Version != "2.0" {
		t.Errorf("version = %s, want 2.0 (first management entry)", got.Dependencies[0].Version)
	}
}

func TestResolveVersions_ManagementErrors(t *testing.T) {
	tests := []struct {
		name    string
		managed Dependency
	}{
		{"no version", Dependency{Coordinate: Coordinate{"g", "m", ""}}},
		{"undefined property", Dependency{Coordinate: Coordinate{"g", "m", "${nope}"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{
				Group:    "g",
				Artifact: "a",
				Ver:      "1.0",
				Dependencies: []Dependency{
					{Coordinate: Coordinate{"g", "b", ""}},
				},
				DependencyManagement: []Dependency{tt.managed},
			}
			_, err := ResolveVersions(p, ResolveOptions{})
			if !errors.Is(err, errors.ErrCodeNoVersion) {
				t.Errorf("expected NO_VERSION, got %v", err)
			}
		})
	}
}

func TestResolveVersions_Unresolvable(t *testing.T) {
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "1.0",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "mystery", ""}},
		},
	}

	_, err := ResolveVersions(p, ResolveOptions{})
	if !errors.Is(err, errors.ErrCodeUnresolved) {
		t.Fatalf("expected UNRESOLVED_DEPENDENCY, got %v", err)
	}
	if !strings.Contains(err.Error(), "g:mystery") {
		t.Errorf("error must name the dependency: %v", err)
	}
}

func TestResolveVersions_SkipUnresolved(t *testing.T) {
	var warnings []string
	p := &Project{
		Group:    "g",
		Artifact: "a",
		Ver:      "1.0",
		Dependencies: []Dependency{
			{Coordinate: Coordinate{"g", "keep", "1.0"}},
			{Coordinate: Coordinate{"g", "mystery", ""}},
		},
	}

	got, err := ResolveVersions(p, ResolveOptions{
		SkipUnresolved: true,
		Logger:         func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) },
	})
	if err != nil {
		t.Fatalf("ResolveVersions failed: %v", err)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0].ArtifactID != "keep" {
		t.Errorf("dependencies = %+v", got.Dependencies)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "g:mystery") {
		t.Errorf("expected one warning naming g:mystery, got %v", warnings)
	}
}
