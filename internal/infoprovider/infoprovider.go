package infoprovider

import "context"

// InfoProvider resolves the attributes of a subject needed for authorization decisions
type InfoProvider interface {
	GetRoles(ctx context.Context, subject string) ([]string, error)
}
