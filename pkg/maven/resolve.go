package maven

import (
	"github.com/matzehuels/depsize/pkg/errors"
)

// ResolveOptions configures dependency version resolution.
type ResolveOptions struct {
	// SkipUnresolved drops dependencies whose version cannot be determined
	// instead of failing the resolution. Each drop is reported through
	// Logger. The default (false) fails hard with UNRESOLVED_DEPENDENCY.
	SkipUnresolved bool

	// Logger receives warnings for skipped dependencies (optional).
	Logger func(format string, args ...any)
}

// ResolveVersions replaces every absent or ${...} placeholder dependency
// version on a flattened project with a concrete one, consulting the
// project's dependencyManagement first and its properties second.
//
// The returned project carries no dependencyManagement; it has served its
// purpose once resolution completes. A project whose dependencies are all
// concrete already is returned as a copy with management cleared.
//
// The reserved placeholder ${project.version} always resolves to the
// project's own inherited version.
func ResolveVersions(p *Project, opts ResolveOptions) (*Project, error) {
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}

	needsWork := false
	for _, d := range p.Dependencies {
		if !concrete(d.Version) {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return resolved(p, p.Dependencies), nil
	}

	managed, err := interpolatedManagement(p)
	if err != nil {
		return nil, err
	}

	deps := make([]Dependency, 0, len(p.Dependencies))
	for _, d := range p.Dependencies {
		if concrete(d.Version) {
			deps = append(deps, d)
			continue
		}

		if v, ok := managed[d.Name()]; ok {
			d.Version = v
			deps = append(deps, d)
			continue
		}
		if v, ok := lookupProperty(p, PlaceholderName(d.Version)); ok && IsPlaceholder(d.Version) {
			d.Version = v
			deps = append(deps, d)
			continue
		}

		if opts.SkipUnresolved {
			opts.Logger("dropping dependency %s of %s: no resolvable version", d.Name(), p.FullID())
			continue
		}
		return nil, errors.New(errors.ErrCodeUnresolved,
			"no version for dependency %s of project %s", d.Name(), p.FullID())
	}

	return resolved(p, deps), nil
}

// interpolatedManagement resolves placeholder versions in the project's
// dependencyManagement entries and returns an artifact-name to version
// lookup. Management entries supply default versions only; their scope is
// irrelevant here.
func interpolatedManagement(p *Project) (map[string]string, error) {
	if len(p.DependencyManagement) == 0 {
		return nil, nil
	}

	managed := make(map[string]string, len(p.DependencyManagement))
	for _, m := range p.DependencyManagement {
		version := m.Version
		switch {
		case version == "":
			return nil, errors.New(errors.ErrCodeNoVersion,
				"management entry %s in project %s has no version", m.Name(), p.FullID())
		case IsPlaceholder(version):
			v, ok := lookupProperty(p, PlaceholderName(version))
			if !ok {
				return nil, errors.New(errors.ErrCodeNoVersion,
					"management entry %s in project %s references undefined property %s",
					m.Name(), p.FullID(), version)
			}
			version = v
		}
		// Child entries precede parent entries after flattening, so the
		// first definition for a name wins.
		if _, ok := managed[m.Name()]; !ok {
			managed[m.Name()] = version
		}
	}
	return managed, nil
}

// lookupProperty resolves a property name against the project.
// "project.version" is reserved and resolves to the project's own
// inherited version, never to an ancestor's.
func lookupProperty(p *Project, name string) (string, bool) {
	if name == "project.version" {
		v := p.Version()
		return v, v != ""
	}
	v, ok := p.Properties[name]
	return v, ok
}

func concrete(version string) bool {
	return version != "" && !IsPlaceholder(version)
}

func resolved(p *Project, deps []Dependency) *Project {
	return &Project{
		Group:        p.Group,
		Artifact:     p.Artifact,
		Ver:          p.Ver,
		Parent:       p.Parent,
		Properties:   p.Properties,
		Dependencies: deps,
	}
}
