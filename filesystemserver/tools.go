package filesystemserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gstbrowser/connector/filesystemserver/handler"
)

type toolHandler struct {
	dispatcher *Dispatcher
	profiles   handler.Profiles
}

func (t *toolHandler) handle(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := requestFromTool(action, request)
		return toolResult(t.dispatcher.Dispatch(ctx, req))
	}
}

func (t *toolHandler) handleUpload(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return nil, err
	}
	content, err := request.RequireString("content")
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: content is not valid base64: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	req := requestFromTool(ActionUpload, request)
	req.Upload = &Upload{Filename: filename, Body: bytes.NewReader(data)}
	return toolResult(t.dispatcher.Dispatch(ctx, req))
}

func (t *toolHandler) handleListProfiles(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	keys := make([]string, 0, len(t.profiles))
	for key := range t.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result strings.Builder
	result.WriteString("Configuration profiles:\n\n")
	for _, key := range keys {
		cfg, err := handler.Resolve(key, t.profiles)
		if err != nil {
			result.WriteString(fmt.Sprintf("%s (invalid: %v)\n", key, err))
			continue
		}
		result.WriteString(fmt.Sprintf("%s (%s)\n", key, cfg.BaseDir))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: result.String(),
			},
		},
	}, nil
}

func requestFromTool(action string, request mcp.CallToolRequest) Request {
	return Request{
		Config: request.GetString("config", handler.DefaultProfile),
		Action: action,
		Path:   request.GetString("path", ""),
		Dir:    request.GetString("dir", ""),
		Old:    request.GetString("old", ""),
		New:    request.GetString("new", ""),
		Name:   request.GetString("name", ""),
	}
}

// toolResult wraps a connector result as JSON text, flagged as an error
// when the action failed.
func toolResult(result handler.Result) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(body),
			},
		},
		IsError: !result.OK(),
	}, nil
}
