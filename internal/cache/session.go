package cache

import (
	"context"
	"time"
)

// Token revocation denylist. Logout stores the token's JTI until the token
// would have expired anyway; AuthRequired rejects denylisted tokens.
// Without Redis, revocation degrades to client-side cookie clearing.

func revocationKey(jti string) string {
	return "revoked:" + jti
}

// RevokeToken marks the given JTI as revoked for ttl.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if Client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return Client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether the given JTI has been revoked.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if Client == nil || jti == "" {
		return false
	}
	n, err := Client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		// Fail-open: an unreachable Redis must not lock everyone out.
		return false
	}
	return n > 0
}
