package core

// UserContext identifies the authenticated caller and the project scope of
// the active conversation. It is resolved by the HTTP layer per request and
// threaded through to the tools that need it; the project agent's tools must
// degrade to a descriptive message when no project is selected.
type UserContext struct {
	UserID    string
	ProjectID string
}

// HasProject reports whether a project is selected for this conversation.
func (c UserContext) HasProject() bool { return c.ProjectID != "" }
