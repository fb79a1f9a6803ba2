package credential

// Unassigned is the group every credential falls back to. It always exists
// and can never be deleted.
const Unassigned = "未分组"

// Credential is one saved login.
type Credential struct {
	// ID is a stable integer assigned by the store
	ID int64

	// Group is the name of the group the credential belongs to
	Group string

	// Name is the display name, unique within its group
	Name string

	// Username is typed into the first field by auto-type
	Username string

	// Secret is the password typed into the second field by auto-type
	Secret string

	// Note is free-form markdown
	Note string

	// CreatedAt is the Unix timestamp when the credential was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the credential was last updated
	UpdatedAt int64
}

// Summary is a credential without its secret.
// Used wherever credentials are listed outside the picker (CLI, web, MCP).
type Summary struct {
	ID        int64  `json:"id"`
	Group     string `json:"group"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	HasNote   bool   `json:"has_note"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ToSummary strips the secret and note body.
func (c *Credential) ToSummary() Summary {
	return Summary{
		ID:        c.ID,
		Group:     c.Group,
		Name:      c.Name,
		Username:  c.Username,
		HasNote:   c.Note != "",
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Group is a named category of credentials.
type Group struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Protected reports whether the group may never be deleted.
func (g Group) Protected() bool {
	return g.Name == Unassigned
}
