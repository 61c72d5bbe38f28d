package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/searchmesh/internal/source"
)

type catalog struct {
	Sources []source.Profile `yaml:"sources"`
}

// LoadCatalog reads source profiles from a YAML file. An empty path yields the
// built-in profiles. Profiles without a kind are vector sources.
func LoadCatalog(path string) ([]source.Profile, error) {
	if path == "" {
		return source.DefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source catalog: %w", err)
	}

	var c catalog
	if err = yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse source catalog %s: %w", path, err)
	}
	if len(c.Sources) == 0 {
		return nil, fmt.Errorf("source catalog %s defines no sources", path)
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		p := &c.Sources[i]
		if p.Kind == "" {
			p.Kind = source.KindVector
		}
		if err = p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("source %s defined twice in %s", p.Name, path)
		}
		seen[p.Name] = struct{}{}
	}

	return c.Sources, nil
}

// SelectProfiles returns the profiles named in enabled, in that order. An empty
// list enables every profile.
func SelectProfiles(all []source.Profile, enabled []string) ([]source.Profile, error) {
	if len(enabled) == 0 {
		return all, nil
	}

	byName := make(map[string]source.Profile, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	out := make([]source.Profile, 0, len(enabled))
	seen := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("enabled source %s is not in the catalog", name)
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, errors.New("no sources enabled")
	}
	return out, nil
}

// Profiles loads the catalog and keeps the enabled sources (DI constructor).
func Profiles(cfg *SearchConfig) ([]source.Profile, error) {
	all, err := LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	return SelectProfiles(all, cfg.Sources)
}
