package registry

// Identity identifies which cached Document belongs to which external
// entity. It is a composite of the platform's user and group identifiers:
// the same user may carry a different display string per group.
type Identity struct {
	UserID  string
	GroupID string
}

// IsZero reports whether the identity is incomplete.
func (id Identity) IsZero() bool { return id.UserID == "" || id.GroupID == "" }

// String returns a human-readable representation "user@group".
func (id Identity) String() string {
	switch {
	case id.UserID == "" && id.GroupID == "":
		return "<empty>"
	case id.UserID == "":
		return "<unknown>@" + id.GroupID
	case id.GroupID == "":
		return id.UserID + "@<unknown>"
	default:
		return id.UserID + "@" + id.GroupID
	}
}
