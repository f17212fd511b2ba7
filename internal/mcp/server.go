package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"swipetodo/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the todo list as tools
func NewServer(svc *notes.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Todo list",
		version,
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - The whole list in display order
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List every todo note in display order. Each note has an integer id and its text under \"note\"."),
		),
		handleListNotes(svc),
	)

	// Tool: add_note - Append a note
	s.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Append a todo note to the end of the list. Returns the stored note with its assigned id."),
			mcp.WithString("note",
				mcp.Required(),
				mcp.Description("Text of the note; must not be blank"),
			),
		),
		handleAddNote(svc),
	)

	// Tool: remove_note - Remove a note by id
	s.AddTool(
		mcp.NewTool("remove_note",
			mcp.WithDescription("Remove the todo note with the given id. Use list_notes first to find ids."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("The note id"),
			),
		),
		handleRemoveNote(svc),
	)

	return s
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := svc.Snapshot()
		if snap.Loading {
			return mcp.NewToolResultError("notes are still loading"), nil
		}
		return jsonResult(notes.Record{Notes: snap.Notes})
	}
}

func handleAddNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("note")
		if err != nil {
			return mcp.NewToolResultError("note is required"), nil
		}

		note, err := svc.AddText(ctx, text)
		if errors.Is(err, notes.ErrEmptyNote) {
			return mcp.NewToolResultError("note must not be blank"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("note added but not saved: %v", err)), nil
		}
		return jsonResult(note)
	}
}

func handleRemoveNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("id", -1)
		if id < 0 {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Remove(ctx, id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no note with id %d", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("note removed but not saved: %v", err)), nil
		}
		return jsonResult(note)
	}
}

// Helper functions

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
