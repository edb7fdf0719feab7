package cmd

import (
	"errors"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcptools "github.com/josephgoksu/backlog/internal/mcp"
)

func TestMCPResponse(t *testing.T) {
	text := func(r *mcpsdk.CallToolResultFor[any]) string {
		require.Len(t, r.Content, 1)
		tc, ok := r.Content[0].(*mcpsdk.TextContent)
		require.True(t, ok)
		return tc.Text
	}

	res, err := mcpResponse(&mcptools.ToolResult{Action: "list", Content: "## Tasks (0)"}, nil)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "## Tasks (0)", text(res))

	res, err = mcpResponse(&mcptools.ToolResult{Action: "view", Error: "task_id is required for view action"}, nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "task_id is required")

	res, err = mcpResponse(nil, errors.New("disk full"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "disk full", text(res))
}

func TestNewMCPServer(t *testing.T) {
	setupCmdTest(t)
	mustExecute(t, "init")

	p, err := openProject(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, newMCPServer(p.tasks))
}
