package openflag

import (
	"os"
	"strings"
)

// EnvVar requests that the served page be opened in a browser on startup.
const EnvVar = "FRONTCONF_OPEN"

// Enabled reports whether FRONTCONF_OPEN is set to a truthy value.
func Enabled() bool {
	value, ok := os.LookupEnv(EnvVar)
	return ok && IsTruthy(value)
}

// IsTruthy accepts 1, t, true, y and yes in any case.
func IsTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes":
		return true
	default:
		return false
	}
}
