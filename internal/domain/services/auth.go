package services

import "context"

// AuthorizationGate decides whether a caller may touch a matter.
//
// Services call the gate before every read or mutating operation on a matter,
// whatever policy the storage backend enforces on its own. A denied caller gets
// an error wrapping domain.ErrNotFound so that the existence of other users'
// matters is not revealed.
type AuthorizationGate interface {
	CanAccessMatter(ctx context.Context, userID, matterID string) error
}
