package build

import (
	"fmt"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// SecretFinding is a potential credential found in rendered build input.
type SecretFinding struct {
	Line        int // 1-indexed
	RuleID      string
	Description string
}

func (f SecretFinding) String() string {
	return fmt.Sprintf("line %d: %s (%s)", f.Line, f.Description, f.RuleID)
}

// ScanSecrets runs the gitleaks default rule set over content.
func ScanSecrets(content string) ([]SecretFinding, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("initializing secret detector: %w", err)
	}
	hits := d.DetectBytes([]byte(content))

	findings := make([]SecretFinding, 0, len(hits))
	for _, h := range hits {
		findings = append(findings, SecretFinding{
			Line:        h.StartLine + 1, // gitleaks is 0-indexed
			RuleID:      h.RuleID,
			Description: h.Description,
		})
	}
	return findings, nil
}
