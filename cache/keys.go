package cache

import "strings"

type keys struct {
	valuePrefix  string
	expiryPrefix string
}

func (k keys) value(key string) string  { return k.valuePrefix + key }
func (k keys) expiry(key string) string { return k.expiryPrefix + key }

// both is the removal batch for one logical entry, expiry record first.
func (k keys) both(key string) []string {
	return []string{k.expiry(key), k.value(key)}
}

// fromExpiry maps an expiry record key back to its logical key.
func (k keys) fromExpiry(backendKey string) (string, bool) {
	return strings.CutPrefix(backendKey, k.expiryPrefix)
}

func (k keys) owned(backendKey string) bool {
	return strings.HasPrefix(backendKey, k.valuePrefix) || strings.HasPrefix(backendKey, k.expiryPrefix)
}
