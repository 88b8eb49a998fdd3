package http

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	MCPServerName    = "chatroster"
	MCPServerVersion = "0.1.0"
)

var ChatRoomListTool = mcp.NewTool(
	"chatroom_list",
	mcp.WithDescription(`Search the chatrooms of the current account by nickname and return one page of results.
An empty keyword lists every chatroom. Pages start at 1.`),
	mcp.WithString("keyword",
		mcp.Description("Case-insensitive substring of the chatroom nickname"),
	),
	mcp.WithNumber("page",
		mcp.Description("1-based page index, default 1"),
	),
	mcp.WithNumber("page_size",
		mcp.Description("Items per page, default from server config"),
	),
)

var ChatRoomMembersTool = mcp.NewTool(
	"chatroom_members",
	mcp.WithDescription("Show the member list of a chatroom whose members were resolved through the HTTP API. Unresolved members appear as raw ids."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Chatroom username, ending with @chatroom"),
	),
)

func (s *Service) initMCPServer() {
	s.mcpServer = server.NewMCPServer(MCPServerName, MCPServerVersion,
		server.WithToolCapabilities(false),
	)
	s.mcpServer.AddTool(ChatRoomListTool, s.handleMCPChatRoomList)
	s.mcpServer.AddTool(ChatRoomMembersTool, s.handleMCPChatRoomMembers)

	s.mcpSSEServer = server.NewSSEServer(s.mcpServer)
	s.mcpStreamableServer = server.NewStreamableHTTPServer(s.mcpServer)
}

func (s *Service) handleMCPChatRoomList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.view(chatRoomQuery{
		Keyword:  request.GetString("keyword", ""),
		Page:     request.GetInt("page", 1),
		PageSize: request.GetInt("page_size", 0),
	})

	buf := &strings.Builder{}
	fmt.Fprintf(buf, "Total %d, page %d, page size %d\n", v.Total, v.Query.PageIndex, v.Query.PageSize)
	buf.WriteString("Name,NickName,Remark\n")
	for _, c := range v.Items {
		fmt.Fprintf(buf, "%s,%s,%s\n", c.UserName, c.NickName, c.Remark)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Service) handleMCPChatRoomMembers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, ok := s.roster.Expansions().Get(name)
	if !ok {
		return mcp.NewToolResultError("chatroom members not resolved yet: " + name), nil
	}
	b, err := json.Marshal(e.Status())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
