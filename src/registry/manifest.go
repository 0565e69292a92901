package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ArtifactTypeContainer is the only artifact type stagehand produces.
const ArtifactTypeContainer = "container"

// Manifest describes the published artifact for downstream consumers.
type Manifest struct {
	ArtifactType       string `json:"artifact-type"`
	ArtifactPath       string `json:"artifact-path"`
	ArtifactIdentifier string `json:"artifact-identifier"`
}

// NewManifest describes the image at registryPath, identified by version.
func NewManifest(registryPath, version string) Manifest {
	return Manifest{
		ArtifactType:       ArtifactTypeContainer,
		ArtifactPath:       registryPath,
		ArtifactIdentifier: version,
	}
}

// WriteManifest writes m as JSON to path, replacing any existing file.
func WriteManifest(path string, m Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing manifest %s", path)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return m, nil
}
