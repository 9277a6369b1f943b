// Package dynsource provides supplementary dynasty records for the
// degraded-data recovery loop. When post-link sanity finds characters
// missing religion or culture, the engine consults sources in priority
// order until sanity is reached or sources run out.
package dynsource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"crownlink/internal/models"
)

// Source is a single provider of supplementary dynasty records.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Load returns the source's dynasty records keyed by ID.
	Load() (map[int]*models.Dynasty, error)
}

// dynastyFile is the on-disk shape of a supplementary dynasty file.
type dynastyFile struct {
	Dynasties []struct {
		ID       int    `yaml:"id"`
		Name     string `yaml:"name"`
		Religion string `yaml:"religion"`
		Culture  string `yaml:"culture"`
	} `yaml:"dynasties"`
}

// ModDirectory is a mod folder carrying dynasty definitions under
// common/dynasties.
type ModDirectory struct {
	name string
	dir  string
}

// Name returns the mod folder's name.
func (m *ModDirectory) Name() string { return m.name }

// Load parses every YAML file in the mod's dynasty directory.
func (m *ModDirectory) Load() (map[int]*models.Dynasty, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dynasty dir: %w", err)
	}
	dynasties := map[int]*models.Dynasty{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading dynasty file %s: %w", entry.Name(), err)
		}
		var file dynastyFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parsing dynasty file %s: %w", entry.Name(), err)
		}
		for _, d := range file.Dynasties {
			dynasties[d.ID] = &models.Dynasty{ID: d.ID, Name: d.Name, Religion: d.Religion, Culture: d.Culture}
		}
	}
	return dynasties, nil
}

// Discover scans a mods root directory and returns a source for every mod
// that carries dynasty definitions. Mods without them are skipped. The
// returned order follows the directory listing, which is the priority order.
func Discover(modsRoot string, logger *slog.Logger) []Source {
	if logger == nil {
		logger = slog.Default()
	}
	if modsRoot == "" {
		return nil
	}
	entries, err := os.ReadDir(modsRoot)
	if err != nil {
		logger.Warn("could not read mods directory", "path", modsRoot, "error", err)
		return nil
	}
	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dynDir := filepath.Join(modsRoot, entry.Name(), "common", "dynasties")
		if info, err := os.Stat(dynDir); err != nil || !info.IsDir() {
			continue
		}
		sources = append(sources, &ModDirectory{name: entry.Name(), dir: dynDir})
	}
	logger.Info("mods with dynasty definitions located", "count", len(sources))
	return sources
}
