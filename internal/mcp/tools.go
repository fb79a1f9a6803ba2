package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Addressing is either id alone or group + name.
func withAddress() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("id", mcp.Description("Credential id. Mutually exclusive with name.")),
		mcp.WithString("group", mcp.Description("Group of the credential when addressing by name. Defaults to the unassigned group.")),
		mcp.WithString("name", mcp.Description("Display name of the credential.")),
	}
}

func newTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

var listToolDef = newTool("credential_list",
	"List stored credentials ordered by group and name. Passwords are never included.",
	mcp.WithString("group", mcp.Description("Only list this group.")),
)

var fetchToolDef = newTool("credential_fetch",
	"Fetch one credential with its note. The password is never returned over this channel.",
	withAddress()...,
)

var storeToolDef = newTool("credential_store",
	"Store a new credential.",
	mcp.WithString("group", mcp.Description("Group name. Defaults to the unassigned group.")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name shown in the picker.")),
	mcp.WithString("username", mcp.Required(), mcp.Description("Username typed by the picker.")),
	mcp.WithString("password", mcp.Required(), mcp.Description("Password typed by the picker.")),
	mcp.WithString("note", mcp.Description("Markdown note.")),
	mcp.WithString("mode", mcp.Enum("error", "replace"), mcp.Description("What to do when group+name is taken. Default error.")),
	mcp.WithBoolean("create_group", mcp.Description("Create the group if it does not exist.")),
)

var updateToolDef = newTool("credential_update",
	"Update fields of an existing credential. Omitted fields are left unchanged.",
	append(withAddress(),
		mcp.WithString("new_group", mcp.Description("Move to this group.")),
		mcp.WithString("new_name", mcp.Description("Rename the credential.")),
		mcp.WithString("username", mcp.Description("New username.")),
		mcp.WithString("password", mcp.Description("New password.")),
		mcp.WithString("note", mcp.Description("New note. An empty string clears it.")),
		mcp.WithBoolean("create_group", mcp.Description("Create new_group if it does not exist.")),
	)...,
)

var deleteToolDef = newTool("credential_delete",
	"Permanently delete a credential. Its id becomes free for reuse.",
	withAddress()...,
)

var noteToolDef = newTool("credential_note",
	"Replace the note of a credential.",
	append(withAddress(),
		mcp.WithString("note", mcp.Description("Markdown note. An empty string clears it.")),
	)...,
)

var groupListToolDef = newTool("group_list",
	"List credential groups with how many credentials each holds.",
)

var groupAddToolDef = newTool("group_add",
	"Create an empty group.",
	mcp.WithString("name", mcp.Required(), mcp.Description("Group name.")),
)

var groupDeleteToolDef = newTool("group_delete",
	"Delete an empty group. The unassigned group cannot be deleted.",
	mcp.WithString("name", mcp.Required(), mcp.Description("Group name.")),
)

var generateToolDef = newTool("password_generate",
	"Generate a random password.",
	mcp.WithNumber("length", mcp.Description("Password length. Defaults to the configured length.")),
	mcp.WithString("charset", mcp.Description("Characters to draw from. Defaults to the configured charset.")),
)
