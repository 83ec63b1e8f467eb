package maven

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/matzehuels/depsize/pkg/errors"
)

// Parse decodes a POM manifest document into a Project.
//
// A blank document fails with EMPTY_DOCUMENT (the fetch succeeded but the
// body carries no content); any XML decoding failure fails with
// PARSE_FAILED. Unknown elements are ignored, and a dependencies element
// holding bare text instead of a structured list decodes as an empty
// dependency list — both shapes occur in the wild.
func Parse(data []byte) (*Project, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "manifest document is empty")
	}

	var doc pomProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, err, "decode manifest")
	}
	if strings.TrimSpace(doc.ArtifactID) == "" {
		return nil, errors.New(errors.ErrCodeParseFailed, "manifest has no artifactId")
	}

	return doc.toProject(), nil
}

type pomProject struct {
	GroupID              string          `xml:"groupId"`
	ArtifactID           string          `xml:"artifactId"`
	Version              string          `xml:"version"`
	Parent               *pomParent      `xml:"parent"`
	Properties           pomProperties   `xml:"properties"`
	Dependencies         []pomDependency `xml:"dependencies>dependency"`
	DependencyManagement struct {
		Dependencies []pomDependency `xml:"dependencies>dependency"`
	} `xml:"dependencyManagement"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// pomProperties decodes the free-form <properties> block, where each child
// element name is a property key.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			if t.Name == start.Name {
				*p = props
				return nil
			}
		}
	}
}

func (doc *pomProject) toProject() *Project {
	p := &Project{
		Group:                strings.TrimSpace(doc.GroupID),
		Artifact:             strings.TrimSpace(doc.ArtifactID),
		Ver:                  strings.TrimSpace(doc.Version),
		Properties:           doc.Properties,
		Dependencies:         toDependencies(doc.Dependencies),
		DependencyManagement: toDependencies(doc.DependencyManagement.Dependencies),
	}
	if doc.Parent != nil && strings.TrimSpace(doc.Parent.ArtifactID) != "" {
		p.Parent = &Dependency{Coordinate: Coordinate{
			GroupID:    strings.TrimSpace(doc.Parent.GroupID),
			ArtifactID: strings.TrimSpace(doc.Parent.ArtifactID),
			Version:    strings.TrimSpace(doc.Parent.Version),
		}}
	}
	return p
}

func toDependencies(in []pomDependency) []Dependency {
	if len(in) == 0 {
		return nil
	}
	out := make([]Dependency, 0, len(in))
	for _, d := range in {
		out = append(out, Dependency{
			Coordinate: Coordinate{
				GroupID:    strings.TrimSpace(d.GroupID),
				ArtifactID: strings.TrimSpace(d.ArtifactID),
				Version:    strings.TrimSpace(d.Version),
			},
			Scope: Scope(strings.TrimSpace(d.Scope)),
		})
	}
	return out
}
