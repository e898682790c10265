package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/notepane/notepane/internal/config"
)

var saveToolDef = mcp.NewTool("note_save",
	mcp.WithDescription("Save a note. The text is trimmed and must not be blank. Returns {status, id}."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Note text")),
	mcp.WithString("user_email", mcp.Description(`Owner email address (default "anonymous")`)),
	mcp.WithString("subject", mcp.Description("Subject of the mail item the note refers to")),
	mcp.WithString("sender", mcp.Description("Sender of the mail item the note refers to")),
)

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List the newest notes with an 80-character preview, newest first."),
	mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum notes to return (default and max %d)", config.MaxListLimit))),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statsToolDef = mcp.NewTool("note_stats",
	mcp.WithDescription("Report the total note count and the three most recently saved notes."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool("note_get",
	mcp.WithDescription("Fetch a single note with its full text."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithReadOnlyHintAnnotation(true),
)
