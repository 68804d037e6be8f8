package cache

import "fmt"

const revokedSessionPrefix = "session:revoked:%s"

// RevokedSessionKey is the marker key for a revoked session id.
func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(revokedSessionPrefix, jti)
}
