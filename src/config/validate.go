package config

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

var boolKeys = []string{
	KeyFailOnSecrets, KeyGatherDepsLocally, KeyTagAsLatest,
	KeyEnsureECRRepository, KeyRunOnVerify, KeyPropagateAWS,
}

// Validate checks the resolved project and property set.
// Returns warnings (soft issues) and a hard error if the configuration is invalid.
func Validate(project ProjectSettings, props Properties) (warnings []string, err error) {
	var errs []string

	// ── Project ───────────────────────────────────────────────────────────

	if !validRepository(project.Name) {
		errs = append(errs, fmt.Sprintf("project.name: %q is not a valid image repository name (lowercase letters, digits and separators)", project.Name))
	}
	if !validTag(project.Version) {
		errs = append(errs, fmt.Sprintf("project.version: %q is not a valid image tag", project.Version))
	}

	// ── Properties ────────────────────────────────────────────────────────

	for _, key := range boolKeys {
		if _, err := props.Bool(key, false); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, key := range []string{KeyLocalPort, KeyContainerPort} {
		port, err := props.Int(key, DefaultPort)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("%s: port %d out of range", key, port))
		}
	}
	if timeout, err := props.Duration(KeyReadyTimeout, DefaultReadyTimeout); err != nil {
		errs = append(errs, err.Error())
	} else if timeout <= 0 {
		errs = append(errs, fmt.Sprintf("%s: %s must be positive", KeyReadyTimeout, timeout))
	}
	if img, ok := props.Lookup(KeyPushImage); ok && !validRepository(img) {
		errs = append(errs, fmt.Sprintf("%s: %q is not a valid image repository name", KeyPushImage, img))
	}

	if _, ok := props.Lookup(KeyRequirementsFile); ok {
		if gather, _ := props.Bool(KeyGatherDepsLocally, false); !gather {
			warnings = append(warnings, fmt.Sprintf("%s is set but %s is false; it will be ignored", KeyRequirementsFile, KeyGatherDepsLocally))
		}
	}

	known := make(map[string]bool, len(KnownKeys))
	for _, k := range KnownKeys {
		known[k] = true
	}
	for _, k := range props.Keys() {
		if !known[k] {
			warnings = append(warnings, fmt.Sprintf("unknown property %q", k))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

func validRepository(name string) bool {
	_, err := reference.WithName(name)
	return err == nil
}

// validTag checks tag against the reference tag grammar. WithTag needs a
// named reference; any valid name will do.
func validTag(tag string) bool {
	named, err := reference.WithName("stagehand")
	if err != nil {
		return false
	}
	_, err = reference.WithTag(named, tag)
	return err == nil
}
