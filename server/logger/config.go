package logger

import (
	"strings"
)

// Config provides the logging Level for a particular namespace.
type Config interface {
	// LevelForNamespace returns a logging Level for particular namespace.
	LevelForNamespace(namespace string) Level
}

// ConfigMap maps namespace patterns to levels. Patterns are colon separated
// namespaces which may contain "*" (exactly one section) and "**" (any
// number of sections) wildcards. The empty pattern configures the root.
type ConfigMap map[string]Level

// NewConfig builds a wildcard aware Config from a ConfigMap. A nil map
// results in a nil Config, which WithConfig ignores.
func NewConfig(configMap ConfigMap) Config {
	if configMap == nil {
		return nil
	}

	return newWildcardNode(configMap)
}

// NewConfigFromString parses a comma separated list of "pattern:level"
// entries, for example "**:ws:debug,:info". Entries without a recognised
// level suffix are enabled at LevelInfo, and entries prefixed with a minus
// sign are disabled, so "-*" silences everything.
func NewConfigFromString(stringConfig string) Config {
	if stringConfig == "" {
		return nil
	}

	entries := strings.Split(stringConfig, ",")

	configMap := make(ConfigMap, len(entries))

	for _, ns := range entries {
		level := LevelInfo

		if strings.HasPrefix(ns, "-") {
			ns = ns[1:]
			level = LevelDisabled
		} else if index := strings.LastIndex(ns, ":"); index > -1 {
			if cfgLevel, ok := LevelFromString(ns[index+1:]); ok {
				level = cfgLevel
				ns = ns[:index]
			}
		}

		if ns == "*" {
			// A lone star addresses the root and everything below it.
			configMap[""] = level
			configMap["**"] = level

			continue
		}

		configMap[ns] = level
	}

	return NewConfig(configMap)
}
