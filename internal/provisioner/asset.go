package provisioner

import (
	_ "embed"
	"path/filepath"
	"strings"

	apperrors "lensdb/internal/errors"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LensProfilesAsset names the lens calibration database in the manifest.
const LensProfilesAsset = "lens-profiles"

//go:embed assets.yaml
var embeddedManifest []byte

// Asset describes a file that must exist before the build proceeds.
type Asset struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	URL         string `yaml:"url"`
	Path        string `yaml:"path"`
}

// Label is the human readable name used in build-log messages.
func (a Asset) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// TargetPath joins the asset's relative path onto projectRoot.
func (a Asset) TargetPath(projectRoot string) string {
	return filepath.Join(projectRoot, filepath.FromSlash(a.Path))
}

// Manifest is the list of assets known to the provisioner.
type Manifest struct {
	Assets []Asset `yaml:"assets"`
}

// Lookup returns the asset with the given name.
func (m *Manifest) Lookup(name string) (Asset, bool) {
	for _, a := range m.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// DecodeManifest parses and validates manifest data.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse asset manifest")
	}

	for i, a := range m.Assets {
		switch {
		case strings.TrimSpace(a.Name) == "":
			return nil, errors.Errorf("asset %d has no name", i)
		case strings.TrimSpace(a.URL) == "":
			return nil, errors.Errorf("asset %s has no url", a.Name)
		case strings.TrimSpace(a.Path) == "" || filepath.IsAbs(a.Path):
			return nil, errors.Errorf("asset %s must have a relative path", a.Name)
		}
	}

	return &m, nil
}

// LensProfiles returns the lens profile database entry from the embedded manifest.
func LensProfiles() (Asset, error) {
	m, err := DecodeManifest(embeddedManifest)
	if err != nil {
		return Asset{}, apperrors.ConfigError(apperrors.CodeConfigParse, "embedded asset manifest is invalid", err).
			WithModule("provisioner").
			WithOperation("LensProfiles")
	}

	a, ok := m.Lookup(LensProfilesAsset)
	if !ok {
		return Asset{}, apperrors.ConfigError(apperrors.CodeConfigGeneric, "asset missing from embedded manifest", nil).
			WithModule("provisioner").
			WithOperation("LensProfiles").
			WithField("asset", LensProfilesAsset)
	}
	return a, nil
}
