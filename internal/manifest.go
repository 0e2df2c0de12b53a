package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fallbacks applied to About when neither options nor the manifest name
// the service.
const (
	DefaultServiceName    = "Origami Service"
	DefaultServicePurpose = "An Origami web service."
)

// manifest is the subset of manifest.yaml read at startup. JSON manifests
// parse as well since JSON is valid YAML.
type manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SystemCode  string `yaml:"systemCode"`
	Version     string `yaml:"version"`
}

func readManifest(path string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// completeAbout backfills unset About fields from the manifest, then from
// the built-in fallbacks. A missing or broken manifest is not an error.
func completeAbout(about About, m manifest) About {
	if about.Name == "" {
		about.Name = m.Name
	}
	if about.Name == "" {
		about.Name = DefaultServiceName
	}
	if about.Purpose == "" {
		about.Purpose = m.Description
	}
	if about.Purpose == "" {
		about.Purpose = DefaultServicePurpose
	}
	if about.SystemCode == "" {
		about.SystemCode = m.SystemCode
	}
	if about.AppVersion == "" {
		about.AppVersion = m.Version
	}
	if about.SchemaVersion == 0 {
		about.SchemaVersion = 1
	}
	return about
}
