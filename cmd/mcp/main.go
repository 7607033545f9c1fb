package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gaffoor434/knowledge-base/internal/bootstrap"
	"github.com/gaffoor434/knowledge-base/internal/config"
	"github.com/gaffoor434/knowledge-base/internal/observability/logging"
)

// The MCP binary exposes the knowledge base to agent hosts over stdio.
// Logging goes to stderr so it never corrupts the protocol stream.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("mcp", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		if err := app.RunLexicalRefresh(ctx); err != nil {
			logger.Error("lexical refresh subscription error", "error", err)
		}
	}()

	s := server.NewMCPServer("knowledge-base", "1.0.0", server.WithToolCapabilities(false))

	queryTool := mcp.NewTool("query_knowledge_base",
		mcp.WithDescription("Answer a question grounded on the indexed document corpus. Returns the answer text and the source documents it cites."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer.")),
	)
	s.AddTool(queryTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		answer, err := app.AnswerUC.Ask(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		payload, err := json.Marshal(answer)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	retrieveTool := mcp.NewTool("retrieve_chunks",
		mcp.WithDescription("Run hybrid retrieval without generation and return the ranked chunks with their scores."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query over the document corpus.")),
	)
	s.AddTool(retrieveTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		retrieval, err := app.RetrieveUC.Retrieve(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}
		payload, err := json.Marshal(retrieval)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents in the knowledge base with their indexing status."),
	)
	s.AddTool(listTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		documents, err := app.Documents.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		payload, err := json.Marshal(documents)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
