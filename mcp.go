package main

import (
	"context"
	"encoding/json"
	"fmt"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

//go:embed mpk_mini_plus_sysex_notes.txt
var sysexNotes string

// runMCP serves the editor's operations over MCP on stdio, so a
// machine client can edit the controller the way the desktop UI did.
func runMCP(session *Session, log zerolog.Logger) {
	s := server.NewMCPServer(
		"MPK Mini Plus Editor",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("mpk_describe-sysex",
		mcp.WithDescription("Returns the SysEx protocol notes for the MPK Mini Plus controller."),
	)
	s.AddTool(docTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Debug().Msg("mcp: describe-sysex")
		return mcp.NewToolResultText(sysexNotes), nil
	})

	getTool := mcp.NewTool("mpk_get-programme",
		mcp.WithDescription("Fetches a programme from the controller as JSON."),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("The programme slot: 0 for the RAM working buffer, 1-8 for stored programmes.")),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if slot < 0 || slot > SlotMax {
			return mcp.NewToolResultError(fmt.Sprintf("slot must be 0-%d, got %d", SlotMax, slot)), nil
		}

		log.Debug().Int("slot", slot).Msg("mcp: get-programme")

		p, err := session.Fetch(uint8(slot))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch programme: %v", err)
		}
		asJson, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal programme to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	sendTool := mcp.NewTool("mpk_send-programme",
		mcp.WithDescription("Writes a programme to the controller."),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("The target slot: 0 for the RAM working buffer, 1-8 for stored programmes.")),
		mcp.WithString("programme-json", mcp.Required(), mcp.Description("The programme in JSON format. It must conform to the Programme structure.")),
	)
	s.AddTool(sendTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if slot < 0 || slot > SlotMax {
			return mcp.NewToolResultError(fmt.Sprintf("slot must be 0-%d, got %d", SlotMax, slot)), nil
		}
		progJson, err := request.RequireString("programme-json")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		log.Debug().Int("slot", slot).Msg("mcp: send-programme")

		var p Programme
		if err := json.Unmarshal([]byte(progJson), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal programme JSON: %v", err)
		}
		p.Slot = uint8(slot)
		if err := session.Push(&p); err != nil {
			return nil, fmt.Errorf("failed to send programme: %v", err)
		}
		return mcp.NewToolResultText("Programme sent successfully."), nil
	})

	copyTool := mcp.NewTool("mpk_copy-programme",
		mcp.WithDescription("Duplicates one programme slot into another on the controller."),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Source slot (0-8).")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Target slot (0-8).")),
	)
	s.AddTool(copyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := request.RequireInt("from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := request.RequireInt("to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if from < 0 || from > SlotMax || to < 0 || to > SlotMax {
			return mcp.NewToolResultError(fmt.Sprintf("slots must be 0-%d", SlotMax)), nil
		}

		log.Debug().Int("from", from).Int("to", to).Msg("mcp: copy-programme")

		if err := session.Copy(uint8(from), uint8(to)); err != nil {
			return nil, fmt.Errorf("failed to copy programme: %v", err)
		}
		return mcp.NewToolResultText("Programme copied successfully."), nil
	})

	log.Info().Msg("starting MPK Mini Plus MCP server")

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}
}
