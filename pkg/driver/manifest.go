package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the project manifest name looked up by the CLI.
const ManifestFile = "oak.yml"

// Manifest represents the parsed contents of oak.yml.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	Authors     []string
	Targets     map[string]*TargetSpec
	TargetOrder []string
	Warnings    WarningMode
}

// TargetSpec describes one program the manifest can run or compile.
type TargetSpec struct {
	Name   string
	Mode   TargetMode
	Entry  string
	Output string
}

// TargetMode selects the engine a target goes through.
type TargetMode string

const (
	TargetModeRun     TargetMode = "run"
	TargetModeCompile TargetMode = "compile"
	TargetModeSymbols TargetMode = "symbols"
)

// WarningMode controls whether non-fatal diagnostics reach stderr.
type WarningMode string

const (
	WarningsShow WarningMode = "show"
	WarningsHide WarningMode = "hide"
)

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses oak.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()
	return decodeManifest(file, absPath)
}

func decodeManifest(r io.Reader, path string) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", path)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}

	manifest := raw.toManifest(path)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" && !versionPattern.MatchString(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	switch m.Warnings {
	case "", WarningsShow, WarningsHide:
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("warnings must be %q or %q", WarningsShow, WarningsHide))
	}
	if len(m.TargetOrder) == 0 {
		errs.Issues = append(errs.Issues, "at least one target must be declared")
	}
	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if target.Mode == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing mode", name))
		} else if !target.Mode.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported mode %q", name, target.Mode))
		}
		if target.Entry == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires an entry", name))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// IsValid reports whether the target mode is recognised.
func (t TargetMode) IsValid() bool {
	switch t {
	case TargetModeRun, TargetModeCompile, TargetModeSymbols:
		return true
	default:
		return false
	}
}

var ErrNoTarget = errors.New("manifest: no targets defined")

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil || len(m.TargetOrder) == 0 {
		return nil, ErrNoTarget
	}
	return m.Targets[m.TargetOrder[0]], nil
}

// FindTarget looks up a target by name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	target, ok := m.Targets[strings.TrimSpace(name)]
	return target, ok
}

// Resolve makes a manifest-relative path absolute.
func (m *Manifest) Resolve(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(filepath.Dir(m.Path), rel)
}

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([0-9A-Za-z\-\+\.]*)?$`)

type manifestFile struct {
	Name     string     `yaml:"name"`
	Version  string     `yaml:"version"`
	Authors  stringList `yaml:"authors"`
	Targets  targetMap  `yaml:"targets"`
	Warnings string     `yaml:"warnings"`
}

type targetYAML struct {
	Mode   TargetMode `yaml:"mode"`
	Entry  string     `yaml:"entry"`
	Output string     `yaml:"output"`
}

type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:        path,
		Name:        strings.TrimSpace(mf.Name),
		Version:     strings.TrimSpace(mf.Version),
		Authors:     mf.Authors.Clone(),
		Targets:     make(map[string]*TargetSpec, len(mf.Targets.items)),
		TargetOrder: make([]string, 0, len(mf.Targets.items)),
		Warnings:    WarningMode(strings.TrimSpace(mf.Warnings)),
	}
	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		if _, exists := result.Targets[item.name]; exists {
			continue
		}
		result.Targets[item.name] = &TargetSpec{
			Name:   item.name,
			Mode:   TargetMode(strings.TrimSpace(string(item.spec.Mode))),
			Entry:  strings.TrimSpace(item.spec.Entry),
			Output: strings.TrimSpace(item.spec.Output),
		}
		result.TargetOrder = append(result.TargetOrder, item.name)
	}
	return result
}
