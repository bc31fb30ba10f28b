package filesystemserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gstbrowser/connector/filesystemserver/handler"
)

var Version = "dev"

const ServerName = "file-manager-connector"

// NewMCPServer exposes the connector actions as MCP tools. Each tool
// answers with the same JSON body the HTTP endpoint sends.
func NewMCPServer(profiles handler.Profiles) (*server.MCPServer, error) {
	if _, err := handler.Resolve(handler.DefaultProfile, profiles); err != nil {
		return nil, err
	}
	t := &toolHandler{
		dispatcher: NewDispatcher(profiles),
		profiles:   profiles,
	}

	s := server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(false),
	)

	configArg := mcp.WithString("config",
		mcp.Description("Name of the configuration profile (default: \"default\")"),
	)
	pathArg := mcp.WithString("path",
		mcp.Description("Directory relative to the profile root (default: the root itself)"),
	)

	s.AddTool(mcp.NewTool(
		ActionTree,
		mcp.WithDescription("Returns the folder tree of the whole root directory. Files are not included."),
		configArg,
	), t.handle(ActionTree))

	s.AddTool(mcp.NewTool(
		ActionFiles,
		mcp.WithDescription("Lists the entries of a directory with size, date, image size and thumbnail."),
		configArg,
		pathArg,
	), t.handle(ActionFiles))

	s.AddTool(mcp.NewTool(
		ActionMkdir,
		mcp.WithDescription("Creates a directory. Names may only use a-z, 0-9, '-', '_' and '.'."),
		configArg,
		pathArg,
		mcp.WithString("dir",
			mcp.Description("Name of the new directory"),
			mcp.Required(),
		),
	), t.handle(ActionMkdir))

	s.AddTool(mcp.NewTool(
		ActionUpload,
		mcp.WithDescription("Stores a file. Accents are stripped from the name and spaces become hyphens."),
		configArg,
		pathArg,
		mcp.WithString("filename",
			mcp.Description("Original file name"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("Base64 encoded file content"),
			mcp.Required(),
		),
	), t.handleUpload)

	s.AddTool(mcp.NewTool(
		ActionRename,
		mcp.WithDescription("Renames a file or directory inside path."),
		configArg,
		pathArg,
		mcp.WithString("old",
			mcp.Description("Current name"),
			mcp.Required(),
		),
		mcp.WithString("new",
			mcp.Description("New name"),
			mcp.Required(),
		),
	), t.handle(ActionRename))

	s.AddTool(mcp.NewTool(
		ActionDelete,
		mcp.WithDescription("Deletes a file or an empty directory."),
		configArg,
		pathArg,
		mcp.WithString("name",
			mcp.Description("Name of the entry to delete"),
			mcp.Required(),
		),
	), t.handle(ActionDelete))

	s.AddTool(mcp.NewTool(
		ActionCopy,
		mcp.WithDescription("Copies a file into an existing directory, or to a new path relative to the root."),
		configArg,
		pathArg,
		mcp.WithString("old",
			mcp.Description("Name of the file to copy"),
			mcp.Required(),
		),
		mcp.WithString("new",
			mcp.Description("Destination directory or path relative to the root"),
			mcp.Required(),
		),
	), t.handle(ActionCopy))

	s.AddTool(mcp.NewTool(
		ActionMove,
		mcp.WithDescription("Moves a file into an existing directory, or to a new path relative to the root."),
		configArg,
		pathArg,
		mcp.WithString("old",
			mcp.Description("Name of the file to move"),
			mcp.Required(),
		),
		mcp.WithString("new",
			mcp.Description("Destination directory or path relative to the root"),
			mcp.Required(),
		),
	), t.handle(ActionMove))

	s.AddTool(mcp.NewTool(
		"list_profiles",
		mcp.WithDescription("Returns the configuration profiles and the root directory each one serves."),
	), t.handleListProfiles)

	return s, nil
}
