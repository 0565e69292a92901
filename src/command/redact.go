package command

import "strings"

const redacted = "******"

// loginSecretFlags are flags whose following value is a credential when the
// subcommand is "login". Elsewhere -p means a port mapping.
var loginSecretFlags = map[string]bool{
	"-p":         true,
	"--password": true,
}

var secretMarkers = []string{"SECRET", "TOKEN", "PASSWORD", "PASS"}

// Redact returns a copy of args with credential values masked, for logging.
func Redact(args []string) []string {
	out := make([]string, len(args))
	login := len(args) > 0 && args[0] == "login"
	for i, a := range args {
		switch {
		case login && i > 0 && loginSecretFlags[args[i-1]]:
			out[i] = redacted
		case strings.HasPrefix(a, "--password="):
			out[i] = "--password=" + redacted
		default:
			out[i] = redactAssignment(a)
		}
	}
	return out
}

func redactAssignment(a string) string {
	key, _, ok := strings.Cut(a, "=")
	if !ok || strings.HasPrefix(key, "-") {
		return a
	}
	upper := strings.ToUpper(key)
	for _, m := range secretMarkers {
		if strings.Contains(upper, m) {
			return key + "=" + redacted
		}
	}
	return a
}
