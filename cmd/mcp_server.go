/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	mcptools "github.com/josephgoksu/backlog/internal/mcp"
	"github.com/josephgoksu/backlog/internal/task"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio so AI assistants can
list, read, create and edit the tasks of this backlog.

The server provides two tools:
- task: list, view, create, edit, archive and complete tasks
- sequence: dependency levels of the open tasks

The server will run until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// mcpResponse turns a handler result into an MCP tool result. Tool errors
// go into the result (not the protocol) so the client can correct itself.
func mcpResponse(result *mcptools.ToolResult, err error) (*mcpsdk.CallToolResultFor[any], error) {
	if err != nil {
		return mcpErrorResponse(err.Error())
	}
	if result.Error != "" {
		text := mcptools.FormatError(result.Error)
		if result.Content != "" {
			text = result.Content
		}
		return mcpErrorResponse(text)
	}
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result.Content}},
	}, nil
}

func mcpErrorResponse(text string) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		IsError: true,
	}, nil
}

// newMCPServer registers the backlog tools on a new server.
func newMCPServer(svc *task.Service) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "backlog-mcp",
		Version: version,
	}
	serverOpts := &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			fmt.Fprintln(os.Stderr, "✓ MCP connection established")
		},
	}
	server := mcpsdk.NewServer(impl, serverOpts)

	taskTool := &mcpsdk.Tool{
		Name: "task",
		Description: `Unified task tool. Use action parameter to select operation:
- list: tasks from this branch and remote branches (filters: status, assignee, label, priority, parent)
- view: one task with description, acceptance criteria, plan and notes
- create: new task (title required; description, status, priority, labels, assignees, dependencies, parent, criteria, plan, notes)
- edit: change a task in one write (title, status, priority, description, plan; labels and dependencies are added; criteria appended; check_criteria, uncheck_criteria, remove_criteria take indices; notes are appended)
- archive: move a task to the archive
- complete: move a finished task to completed

REQUIRED FIELDS BY ACTION:
- view, edit, archive, complete: task_id
- create: title`,
	}
	mcpsdk.AddTool(server, taskTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.TaskToolParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpResponse(mcptools.HandleTaskTool(ctx, svc, params.Arguments))
	})

	sequenceTool := &mcpsdk.Tool{
		Name:        "sequence",
		Description: "Group open tasks into dependency levels. Tasks in the same sequence can be worked on in parallel. Use {\"all\":true} to include done tasks.",
	}
	mcpsdk.AddTool(server, sequenceTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.SequenceToolParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpResponse(mcptools.HandleSequenceTool(ctx, svc, params.Arguments))
	})
	return server
}

func runMCPServer(ctx context.Context) error {
	// NOTE: MCP uses stdio transport. stdout MUST be pure JSON-RPC.
	// All status/debug output goes to stderr only.
	fmt.Fprintln(os.Stderr, "Backlog MCP Server starting...")

	p, err := openProject(ctx)
	if err != nil {
		return fmt.Errorf("open backlog: %w", err)
	}

	server := newMCPServer(p.tasks)
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
