package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		project      ProjectSettings
		props        map[string]string
		wantErr      string
		wantWarnings int
	}{
		{name: "valid", project: testProject()},
		{name: "uppercase name", project: ProjectSettings{Name: "MyService", Version: "1.0"}, wantErr: "project.name"},
		{name: "bad tag", project: ProjectSettings{Name: "svc", Version: "1.0+build/7"}, wantErr: "project.version"},
		{name: "port out of range", project: testProject(), props: map[string]string{KeyLocalPort: "70000"}, wantErr: "out of range"},
		{name: "bad boolean", project: testProject(), props: map[string]string{KeyTagAsLatest: "sometimes"}, wantErr: KeyTagAsLatest},
		{name: "bad artifact", project: testProject(), props: map[string]string{KeyPushImage: "Team/Svc"}, wantErr: KeyPushImage},
		{name: "zero ready timeout", project: testProject(), props: map[string]string{KeyReadyTimeout: "0"}, wantErr: "must be positive"},
		{name: "negative ready timeout", project: testProject(), props: map[string]string{KeyReadyTimeout: "-5s"}, wantErr: "must be positive"},
		{name: "nested artifact", project: testProject(), props: map[string]string{KeyPushImage: "team/api"}},
		{name: "prerelease tag", project: ProjectSettings{Name: "svc", Version: "1.0.0-rc.1"}},
		{name: "unknown key", project: testProject(), props: map[string]string{"docker_pusj_registry": "x"}, wantWarnings: 1},
		{name: "requirements without gather", project: testProject(), props: map[string]string{KeyRequirementsFile: "req.txt"}, wantWarnings: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := Validate(tt.project, NewProperties(tt.props))
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.wantWarnings)
			}
		})
	}
}
