package auth

import "oaresponse/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware only needs claims back; how keys are fetched is up to the
// implementation.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error wrapping domain.ErrUnauthorized if the token is invalid,
	// expired, or signed with an unexpected algorithm.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
