package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"context_bench/internal/logger"
)

// Loader reads package files from one scenarios directory.
type Loader struct {
	Dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

var numberPrefix = regexp.MustCompile(`^\d+-`)

// packageFile finds the yaml file for id. Numbered files such as
// 01-autogen.yaml match both "autogen" and "01-autogen".
func (l *Loader) packageFile(id string) (string, error) {
	files, err := l.yamlFiles()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		base := strings.TrimSuffix(filepath.Base(f), ".yaml")
		if base == id || strings.HasSuffix(base, "-"+id) || base == numberPrefix.ReplaceAllString(id, "") {
			return f, nil
		}
	}
	return filepath.Join(l.Dir, id+".yaml"), nil
}

func (l *Loader) yamlFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.Dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func readPackage(path string) (*PackageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PackageSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if spec.PackageID == "" || spec.Scenarios == nil {
		return nil, fmt.Errorf("%w: %s: missing package-id or scenarios", ErrInvalidPackage, path)
	}
	return &spec, nil
}

// LoadPackage loads the package with the given id.
func (l *Loader) LoadPackage(id string) (*PackageSpec, error) {
	path, err := l.packageFile(id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s (tried %s)", ErrPackageNotFound, id, path)
	}
	return readPackage(path)
}

// PackageFile returns the path of the package's yaml file.
func (l *Loader) PackageFile(id string) (string, error) {
	return l.packageFile(id)
}

// LoadScenario resolves a "package:scenario" id.
func (l *Loader) LoadScenario(fullID string) (*Scenario, error) {
	id, err := ParseScenarioID(fullID)
	if err != nil {
		return nil, err
	}
	pkg, err := l.LoadPackage(id.Package)
	if err != nil {
		return nil, err
	}
	for _, item := range pkg.Scenarios {
		if item.ID != id.Scenario {
			continue
		}
		return &Scenario{
			ID:      id,
			Name:    pkg.PackageID + ": " + item.ID,
			Query:   item.Query,
			Oracle:  item.Oracle,
			Sources: item.Sources,
			Package: pkg,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s in package %s", ErrScenarioNotFound, id.Scenario, id.Package)
}

// OracleContent reads the scenario's oracle file. Relative paths are tried
// against the scenarios directory first, then the working directory.
func (l *Loader) OracleContent(s *Scenario) (string, error) {
	if s.Oracle == "" {
		return "", nil
	}
	candidates := []string{s.Oracle}
	if !filepath.IsAbs(s.Oracle) {
		candidates = []string{filepath.Join(l.Dir, s.Oracle), s.Oracle}
	}
	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("oracle not found: %s", s.Oracle)
}

// ListPackages returns every valid package. Broken files are skipped.
func (l *Loader) ListPackages() []*PackageSpec {
	files, err := l.yamlFiles()
	if err != nil {
		return nil
	}
	var out []*PackageSpec
	for _, f := range files {
		spec, err := readPackage(f)
		if err != nil {
			logger.Debug().Err(err).Str("file", f).Msg("Skipping package file")
			continue
		}
		out = append(out, spec)
	}
	return out
}

// Listed is one scenario of ListScenarios.
type Listed struct {
	PackageID string
	Item      ScenarioItem
	FullID    string
}

func (l *Loader) ListScenarios() []Listed {
	var out []Listed
	for _, pkg := range l.ListPackages() {
		for _, item := range pkg.Scenarios {
			out = append(out, Listed{
				PackageID: pkg.PackageID,
				Item:      item,
				FullID:    pkg.PackageID + ":" + item.ID,
			})
		}
	}
	return out
}

// ScenarioIDs lists every "package:scenario" id.
func (l *Loader) ScenarioIDs() []string {
	listed := l.ListScenarios()
	ids := make([]string, 0, len(listed))
	for _, s := range listed {
		ids = append(ids, s.FullID)
	}
	return ids
}

// PackageScenarios lists the ids of one package.
func (l *Loader) PackageScenarios(id string) ([]string, error) {
	pkg, err := l.LoadPackage(id)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pkg.Scenarios))
	for _, s := range pkg.Scenarios {
		ids = append(ids, pkg.PackageID+":"+s.ID)
	}
	return ids, nil
}

// MissingEnv lists the variables referenced by the package's env_vars
// templates that lookup cannot resolve.
func MissingEnv(pkg *PackageSpec, lookup func(string) (string, bool)) []string {
	if pkg == nil {
		return nil
	}
	var missing []string
	for _, tmpl := range pkg.EnvVars {
		for _, m := range envRef.FindAllStringSubmatch(tmpl, -1) {
			if v, ok := lookup(m[1]); !ok || v == "" {
				missing = append(missing, m[1])
			}
		}
	}
	sort.Strings(missing)
	return missing
}

var envRef = regexp.MustCompile(`\$\{(\w+)\}`)
