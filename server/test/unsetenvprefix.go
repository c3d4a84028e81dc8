package test

import (
	"os"
	"strings"
)

// UnsetEnvPrefix removes all environment variables starting with prefix.
func UnsetEnvPrefix(prefix string) {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}
