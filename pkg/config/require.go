package config

import (
	"log"
	"sort"
	"strings"
)

// Require stops the process if any of the named settings is blank.
func Require(values map[string]string) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			log.Fatalf("missing required env %s", name)
		}
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
