package maven

import (
	"testing"

	"github.com/matzehuels/depsize/pkg/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<project>
  <groupId>org.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>7</version>
  </parent>
  <properties>
    <guava.version>32.1.3-jre</guava.version>
    <maven.compiler.source>17</maven.compiler.source>
  </properties>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>2.0.9</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if p.FullID() != "org.example:app:1.0" {
		t.Errorf("FullID = %s", p.FullID())
	}
	if p.Parent == nil || p.Parent.FullID() != "org.example:parent:7" {
		t.Errorf("parent = %+v", p.Parent)
	}
	if p.Properties["guava.version"] != "32.1.3-jre" {
		t.Errorf("properties = %v", p.Properties)
	}
	if len(p.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(p.Dependencies))
	}
	if p.Dependencies[0].Version != "${guava.version}" {
		t.Errorf("placeholder version lost: %s", p.Dependencies[0].Version)
	}
	if p.Dependencies[1].Scope != ScopeTest {
		t.Errorf("scope = %s", p.Dependencies[1].Scope)
	}
	if len(p.DependencyManagement) != 1 || p.DependencyManagement[0].Version != "2.0.9" {
		t.Errorf("dependencyManagement = %+v", p.DependencyManagement)
	}
}

func TestParse_InheritedIdentity(t *testing.T) {
	data := []byte(`<project>
  <artifactId>child</artifactId>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>3</version>
  </parent>
</project>`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.GroupID() != "org.example" {
		t.Errorf("inherited group = %s", p.GroupID())
	}
	if p.Version() != "3" {
		t.Errorf("inherited version = %s", p.Version())
	}
	if p.FullID() != "org.example:child:3" {
		t.Errorf("FullID = %s", p.FullID())
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	for _, body := range []string{"", "   \n\t  "} {
		_, err := Parse([]byte(body))
		if !errors.Is(err, errors.ErrCodeEmptyDocument) {
			t.Errorf("Parse(%q) = %v, want EMPTY_DOCUMENT", body, err)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("<project><artifactId>broken"))
	if !errors.Is(err, errors.ErrCodeParseFailed) {
		t.Errorf("expected PARSE_FAILED, got %v", err)
	}
}

func TestParse_MissingArtifactID(t *testing.T) {
	_, err := Parse([]byte("<project><groupId>g</groupId></project>"))
	if !errors.Is(err, errors.ErrCodeParseFailed) {
		t.Errorf("expected PARSE_FAILED, got %v", err)
	}
}

// Some documents in the wild carry bare text where the dependency list
// belongs; that shape must decode as an empty list, not a parse error.
func TestParse_ScalarDependencyList(t *testing.T) {
	data := []byte(`<project>
  <groupId>org.example</groupId>
  <artifactId>odd</artifactId>
  <version>1.0</version>
  <dependencies>none</dependencies>
</project>`)

	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Dependencies) != 0 {
		t.Errorf("expected empty dependency list, got %+v", p.Dependencies)
	}
}
