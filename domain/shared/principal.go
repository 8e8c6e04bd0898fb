package shared

// Principal is the authenticated caller. It is passed explicitly to every
// application operation; nothing reads identity from ambient request state.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

// CanAccess reports whether the principal may see a resource owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsAdmin || p.UserID == ownerID
}
