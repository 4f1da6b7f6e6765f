package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// defaultQueueLimit caps list_queue output when no limit is given.
const defaultQueueLimit = 50

// SyncStatusInput is the input schema for the sync_status tool.
type SyncStatusInput struct{}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	Online     bool           `json:"online"`
	Pending    int            `json:"pending"`
	Running    bool           `json:"running"`
	LastReport *ReportOutput  `json:"last_report,omitempty"`
	Notices    []NoticeOutput `json:"notices"`
}

// NoticeOutput is an active connectivity notice.
type NoticeOutput struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SyncNowInput is the input schema for the sync_now tool.
type SyncNowInput struct{}

// ReportOutput summarises a replay pass.
type ReportOutput struct {
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	Attempted int    `json:"attempted"`
	Synced    int    `json:"synced"`
	Failed    int    `json:"failed"`
	Dropped   int    `json:"dropped"`
}

// ListQueueInput is the input schema for the list_queue tool.
type ListQueueInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of items to return (default 50)"`
}

// ListQueueOutput is the output schema for the list_queue tool.
type ListQueueOutput struct {
	Items []QueueItemOutput `json:"items"`
	Total int               `json:"total"`
}

// QueueItemOutput is one outstanding queue item.
type QueueItemOutput struct {
	ID         int64  `json:"id"`
	Operation  string `json:"operation"`
	Attempts   int    `json:"attempts"`
	EnqueuedAt string `json:"enqueued_at"`
	LastError  string `json:"last_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report connectivity, pending queue size and the last replay pass",
	}, s.handleSyncStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_now",
		Description: "Replay queued offline operations against the server now",
	}, s.handleSyncNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_queue",
		Description: "List queued offline operations in replay order",
	}, s.handleListQueue)
}

func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncStatusInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	status, err := s.ports.Offline.Status(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, err
	}

	out := SyncStatusOutput{
		Online:  status.Online,
		Pending: status.Pending,
		Running: status.Sync.Running,
		Notices: make([]NoticeOutput, len(status.Notices)),
	}
	if status.Sync.LastReport != nil {
		r := toReportOutput(*status.Sync.LastReport)
		out.LastReport = &r
	}
	for i, n := range status.Notices {
		out.Notices[i] = NoticeOutput{Kind: string(n.Kind), Title: n.Title, Message: n.Message}
	}
	return nil, out, nil
}

func (s *Server) handleSyncNow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncNowInput,
) (*mcp.CallToolResult, ReportOutput, error) {
	report, err := s.ports.Offline.SyncNow(ctx)
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, toReportOutput(report), nil
}

func (s *Server) handleListQueue(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListQueueInput,
) (*mcp.CallToolResult, ListQueueOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultQueueLimit
	}

	items, err := s.ports.Offline.Queue(ctx)
	if err != nil {
		return nil, ListQueueOutput{}, err
	}

	out := ListQueueOutput{Items: []QueueItemOutput{}, Total: len(items)}
	for i := range items {
		if i == limit {
			break
		}
		out.Items = append(out.Items, QueueItemOutput{
			ID:         items[i].ID,
			Operation:  items[i].Operation().String(),
			Attempts:   items[i].Attempts,
			EnqueuedAt: items[i].EnqueuedAt.UTC().Format(time.RFC3339),
			LastError:  items[i].LastError,
		})
	}
	return nil, out, nil
}

func toReportOutput(r domain.SyncReport) ReportOutput {
	return ReportOutput{
		StartedAt: r.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:   r.EndedAt.UTC().Format(time.RFC3339),
		Attempted: r.Attempted,
		Synced:    r.Synced,
		Failed:    r.Failed,
		Dropped:   r.Dropped,
	}
}
