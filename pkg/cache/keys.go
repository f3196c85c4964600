package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const keySep = ":"

// Key joins non-empty parts into a namespaced key, e.g. Key("series", "WALCL") = "series:WALCL".
func Key(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, keySep)
}

// Fingerprint is a short stable digest of parts, used to keep long inputs out of keys.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

// Pattern matches every key in the namespace.
func Pattern(namespace string) string {
	if namespace == "" {
		return "*"
	}
	return namespace + keySep + "*"
}
