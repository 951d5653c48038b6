package port

import "github.com/shakibbs/Event-Backend/internal/core/domain"

// PrincipalCache memoizes resolved principals by user id between requests.
type PrincipalCache interface {
	Get(userID int64) (*domain.Principal, bool)
	Add(userID int64, principal *domain.Principal)
	Remove(userID int64)
	Purge()
}
