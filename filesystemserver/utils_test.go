package filesystemserver_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbrowser/connector/filesystemserver"
	"github.com/gstbrowser/connector/filesystemserver/handler"
)

func testProfiles(root string) handler.Profiles {
	return handler.Profiles{
		handler.DefaultProfile: {RootDir: root},
	}
}

func startTestClient(t *testing.T, fss *server.MCPServer) client.MCPClient {
	t.Helper()

	mcpClient, err := client.NewInProcessClient(fss)
	require.NoError(t, err)
	t.Cleanup(func() { mcpClient.Close() })

	err = mcpClient.Start(context.Background())
	require.NoError(t, err)

	// Initialize the client
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	result, err := mcpClient.Initialize(context.Background(), initRequest)
	require.NoError(t, err)
	assert.Equal(t, filesystemserver.ServerName, result.ServerInfo.Name)
	assert.Equal(t, filesystemserver.Version, result.ServerInfo.Version)

	return mcpClient
}

func getTool(t *testing.T, mcpClient client.MCPClient, toolName string) *mcp.Tool {
	t.Helper()
	result, err := mcpClient.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	for _, tool := range result.Tools {
		if tool.Name == toolName {
			return &tool
		}
	}
	require.Fail(t, "Tool not found", toolName)
	return nil
}

func callTool(t *testing.T, mcpClient client.MCPClient, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := mcpClient.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
