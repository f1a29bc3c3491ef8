package models

// Viewer identifies who is asking for a read. The zero value is an anonymous
// caller; reads must not look up per-user state for it.
type Viewer struct {
	UserID        uint
	Authenticated bool
}

// Anonymous returns a viewer without identity.
func Anonymous() Viewer {
	return Viewer{}
}

// AuthenticatedAs returns a viewer for the given user.
func AuthenticatedAs(userID uint) Viewer {
	return Viewer{UserID: userID, Authenticated: true}
}

// Is reports whether the viewer is the given user.
func (v Viewer) Is(userID uint) bool {
	return v.Authenticated && v.UserID == userID
}
