package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for tillsync resources.
	uriScheme = "tillsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "dead-letters",
		Name:        "dead-letters",
		Description: "Queue items dropped after exhausting their replay attempts",
		MIMEType:    "application/json",
	}, s.handleDeadLettersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "queue/{itemId}",
		Name:        "queue-item",
		Description: "Payload and state of a queued operation",
		MIMEType:    "application/json",
	}, s.handleQueueItemResource)
}

func (s *Server) handleDeadLettersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	letters, err := s.ports.Offline.DeadLetters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dead letters: %w", err)
	}

	data, err := json.MarshalIndent(letters, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling dead letters: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

func (s *Server) handleQueueItemResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractQueueItemID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	items, err := s.ports.Offline.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}
		data, err := json.MarshalIndent(items[i], "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling queue item: %w", err)
		}
		return jsonResult(req.Params.URI, data), nil
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractQueueItemID extracts the item ID from a URI like tillsync://queue/{itemId}.
func extractQueueItemID(uri string) (int64, bool) {
	const prefix = uriScheme + "queue/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(uri, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
