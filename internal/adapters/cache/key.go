package cache

import "golang.org/x/text/cases"

// NormalizeKey returns the canonical identity of key
//
// Keys that only differ in letter case share one canonical key.
func NormalizeKey(key string) string {
	// Casers are stateful, so don't share one between goroutines
	return cases.Fold().String(key)
}
