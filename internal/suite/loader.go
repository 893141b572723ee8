package suite

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"edharness/pkg/logging"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

const suitePattern = "**/*.{yaml,yml}"

// Builtin returns the suites shipped with edharness. Their scripts are looked
// up in scriptsDir.
func Builtin(scriptsDir string) ([]Suite, error) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	if scriptsDir == "" {
		scriptsDir = "."
	}
	return LoadFS(sub, "builtin", scriptsDir)
}

// Load reads the suites at suitesPath, which may be a directory searched
// recursively or a single file. An empty suitesPath yields the built-in suites.
// scriptsDir, when set, is the work dir of suites that do not name one.
func Load(suitesPath, scriptsDir string) ([]Suite, error) {
	if suitesPath == "" {
		return Builtin(scriptsDir)
	}

	info, err := os.Stat(suitesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read suites: %w", err)
	}
	if !info.IsDir() {
		s, err := loadFile(os.DirFS(filepath.Dir(suitesPath)), filepath.Base(suitesPath), filepath.Dir(suitesPath), scriptsDir)
		if err != nil {
			return nil, err
		}
		return []Suite{s}, nil
	}
	return LoadFS(os.DirFS(suitesPath), suitesPath, scriptsDir)
}

// LoadFS reads every YAML suite below the root of fsys. root is the on-disk
// location of fsys and anchors relative work dirs.
func LoadFS(fsys fs.FS, root, scriptsDir string) ([]Suite, error) {
	matches, err := doublestar.Glob(fsys, suitePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search for suites: %w", err)
	}

	var suites []Suite
	byName := make(map[string]string)
	for _, name := range matches {
		s, err := loadFile(fsys, name, root, scriptsDir)
		if err != nil {
			return nil, err
		}
		if prev, ok := byName[s.Name]; ok {
			return nil, fmt.Errorf("suite %s defined in both %s and %s", s.Name, prev, s.Source)
		}
		byName[s.Name] = s.Source
		suites = append(suites, s)
	}

	logging.Debug("Suite", "loaded %d suite(s) from %s", len(suites), root)
	return suites, nil
}

func loadFile(fsys fs.FS, name, root, scriptsDir string) (Suite, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Suite{}, fmt.Errorf("failed to read suite %s: %w", name, err)
	}

	s, err := Parse(data)
	if err != nil {
		return Suite{}, fmt.Errorf("suite %s: %w", name, err)
	}

	s.Source = filepath.Join(root, filepath.FromSlash(name))
	dir := filepath.Join(root, filepath.FromSlash(path.Dir(name)))
	switch {
	case s.WorkDir != "" && !filepath.IsAbs(s.WorkDir):
		s.WorkDir = filepath.Join(dir, s.WorkDir)
	case s.WorkDir == "" && scriptsDir != "":
		s.WorkDir = scriptsDir
	case s.WorkDir == "":
		s.WorkDir = dir
	}
	return s, nil
}

// Parse decodes and validates a single suite. Unknown fields are rejected so a
// misspelt expectation cannot silently pass.
func Parse(data []byte) (Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Suite{}, fmt.Errorf("empty suite file")
		}
		return Suite{}, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Suite{}, err
	}
	// Surface invalid cases, such as overlapping expected and unexpected lines, at load time.
	for _, c := range s.Cases {
		if _, err := s.TestCase(c, time.Second); err != nil {
			return Suite{}, err
		}
	}
	return s, nil
}

// FilterSuites keeps the suites and cases matched by f, preserving order.
// Suites left with no cases are dropped.
func FilterSuites(suites []Suite, f Filter) ([]Suite, error) {
	for _, patterns := range [][]string{f.Suites, f.Cases, f.Tags} {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid filter pattern %q", p)
			}
		}
	}

	var out []Suite
	for _, s := range suites {
		if !matchAny(f.Suites, s.Name) {
			continue
		}
		var cases []Case
		for _, c := range s.Cases {
			if matchAny(f.Cases, c.Name) && matchTags(f.Tags, c.TestCaseIDs) {
				cases = append(cases, c)
			}
		}
		if len(cases) == 0 {
			continue
		}
		s.Cases = cases
		out = append(out, s)
	}
	return out, nil
}

// Find returns the suite called name.
func Find(suites []Suite, name string) (Suite, bool) {
	for _, s := range suites {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}

func matchAny(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, value); ok {
			return true
		}
	}
	return false
}

func matchTags(patterns, ids []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, id := range ids {
		if matchAny(patterns, id) {
			return true
		}
	}
	return false
}
