package domain

// RoleAdmin is the workspace role allowed to disconnect stores
const RoleAdmin = "ADMIN"

// Member is a user's membership in a workspace as reported by the membership oracle
type Member struct {
	WorkspaceID string `json:"workspaceId" bson:"workspaceId"`
	UserID      string `json:"userId" bson:"userId"`
	Role        string `json:"role" bson:"role"`
}

// IsAdmin reports whether the member holds the admin role
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
