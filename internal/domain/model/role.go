package model

// Role is computed on every interaction from identity plus the barista table
// and the static admin allow-list. It is never persisted or cached.
type Role string

const (
	RoleClient  Role = "client"
	RoleBarista Role = "barista"
	RoleAdmin   Role = "admin"
)

// AdminSet is the static admin allow-list loaded from config.
type AdminSet map[int64]struct{}

func NewAdminSet(ids []int64) AdminSet {
	s := make(AdminSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s AdminSet) Contains(tgID int64) bool {
	_, ok := s[tgID]
	return ok
}
