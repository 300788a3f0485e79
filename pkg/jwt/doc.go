// Package jwt issues and verifies the HS256 tokens that carry a user's
// identity, tenant and role between stateless requests.
//
// Service is the low-level signer: Generate serializes any claims value and
// Parse verifies signature, algorithm and temporal claims. Issuer builds on it
// with the platform's token model:
//
//	svc, _ := jwt.NewFromString(secret)
//	issuer := jwt.NewIssuer(svc, jwt.WithAccessTTL(24*time.Hour))
//
//	pair, _ := issuer.IssuePair("anna@clientco.com", tenantID, "ADMIN")
//	claims, err := issuer.Decode(ctx, pair.AccessToken, jwt.KindAccess)
//
// Access and refresh tokens differ by the "kind" claim; Decode rejects the
// wrong kind with ErrKindMismatch. Every rejection wraps ErrInvalidToken, and
// the specific causes (ErrMalformedToken, ErrExpiredToken, ErrInvalidSignature,
// ErrKindMismatch, ErrRevokedToken) stay distinguishable with errors.Is so
// callers can choose between refreshing and re-authenticating.
//
// Tokens are stateless. When a Denylist is configured with WithDenylist,
// Revoke records a token id for the rest of its lifetime and every decode
// consults the list, failing closed if the list cannot be reached.
package jwt
