package maven

// Project is the in-memory form of a POM manifest: identity, parent
// reference, properties, direct dependencies, and dependency management.
//
// Group and version are each inherited: when the document declares none,
// the value comes from the parent reference. Use [Project.GroupID] and
// [Project.Version] instead of reading the raw fields.
//
// Projects are treated as immutable value records; flattening and
// resolution return new instances rather than mutating in place.
type Project struct {
	Group    string // raw groupId, may be empty when inherited
	Artifact string // artifactId, always present in a valid manifest
	Ver      string // raw version, may be empty when inherited

	Parent               *Dependency
	Properties           map[string]string
	Dependencies         []Dependency
	DependencyManagement []Dependency
}

// GroupID returns the project's own groupId, falling back to the parent's.
func (p *Project) GroupID() string {
	if p.Group != "" {
		return p.Group
	}
	if p.Parent != nil {
		return p.Parent.GroupID
	}
	return ""
}

// Version returns the project's own version, falling back to the parent's.
func (p *Project) Version() string {
	if p.Ver != "" {
		return p.Ver
	}
	if p.Parent != nil {
		return p.Parent.Version
	}
	return ""
}

// Coordinate returns the project's identity with inherited fields applied.
func (p *Project) Coordinate() Coordinate {
	return Coordinate{GroupID: p.GroupID(), ArtifactID: p.Artifact, Version: p.Version()}
}

// FullID returns "inheritedGroup:artifactId:inheritedVersion".
func (p *Project) FullID() string {
	return p.Coordinate().FullID()
}

// Flattened reports whether the project has no remaining parent reference.
func (p *Project) Flattened() bool {
	return p.Parent == nil
}

// merge combines a project with its already-flattened parent into a single
// record with no parent reference. The child's own group and version win
// when declared; properties merge child-first (child wins on key collision);
// dependency and dependencyManagement lists concatenate child-then-parent.
func merge(child, parent *Project) *Project {
	props := make(map[string]string, len(child.Properties)+len(parent.Properties))
	for k, v := range parent.Properties {
		props[k] = v
	}
	for k, v := range child.Properties {
		props[k] = v
	}

	group := child.Group
	if group == "" {
		group = parent.GroupID()
	}
	version := child.Ver
	if version == "" {
		version = parent.Version()
	}

	return &Project{
		Group:                group,
		Artifact:             child.Artifact,
		Ver:                  version,
		Properties:           props,
		Dependencies:         concat(child.Dependencies, parent.Dependencies),
		DependencyManagement: concat(child.DependencyManagement, parent.DependencyManagement),
	}
}

func concat(a, b []Dependency) []Dependency {
	if len(b) == 0 {
		return a
	}
	out := make([]Dependency, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
