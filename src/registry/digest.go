package registry

import (
	"regexp"

	"github.com/opencontainers/go-digest"
)

// "<tag>: digest: sha256:<hex> size: <n>" as printed by docker push.
var pushDigestRe = regexp.MustCompile(`digest:\s+(\S+:[0-9a-fA-F]+)`)

// ParsePushDigest extracts the manifest digest from docker push output.
// Returns "" when no valid digest is found.
func ParsePushDigest(lines []string) digest.Digest {
	for i := len(lines) - 1; i >= 0; i-- {
		m := pushDigestRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		d, err := digest.Parse(m[1])
		if err != nil {
			continue
		}
		return d
	}
	return ""
}
