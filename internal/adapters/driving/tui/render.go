package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tillsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// RenderStatus renders the register status panel.
// It is shared by the live monitor and the status command.
func RenderStatus(s *styles.Styles, status domain.RegisterStatus, width int) string {
	if s == nil {
		s = styles.DefaultStyles()
	}

	badge := s.Online.Render("ONLINE")
	if !status.Online {
		badge = s.Offline.Render("OFFLINE")
	}

	lines := []string{
		s.Title.Render("tillsync") + "  " + badge,
		"",
		fmt.Sprintf("%s %d", s.Muted.Render("Pending:"), status.Pending),
		fmt.Sprintf("%s %s", s.Muted.Render("Replay: "), renderSync(s, status.Sync)),
	}

	for _, n := range status.Notices {
		lines = append(lines, "", renderNotice(s, n))
	}

	banner := s.Banner
	if width > 4 {
		banner = banner.Width(width - 4)
	}
	return banner.Render(strings.Join(lines, "\n"))
}

func renderSync(s *styles.Styles, sync domain.SyncStatus) string {
	if sync.Running {
		return s.Warning.Render("running")
	}
	if sync.LastReport == nil {
		return s.Muted.Render("never run")
	}

	r := sync.LastReport
	summary := fmt.Sprintf("last pass %s: %d synced, %d failed, %d dropped",
		r.EndedAt.Format(time.Kitchen), r.Synced, r.Failed, r.Dropped)
	if r.Failed > 0 || r.Dropped > 0 {
		return s.Error.Render(summary)
	}
	return s.Success.Render(summary)
}

func renderNotice(s *styles.Styles, n domain.Notice) string {
	return s.Notice.Render(s.Subtitle.Render(n.Title) + "\n" + s.Normal.Render(n.Message))
}

// RenderQueue renders outstanding queue items, oldest first.
// A positive limit caps the number of rows shown.
func RenderQueue(s *styles.Styles, items []domain.QueueItem, limit int) string {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if len(items) == 0 {
		return s.Muted.Render("Queue is empty")
	}

	shown := items
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([]string, 0, len(shown)+2)
	rows = append(rows, s.Subtitle.Render(fmt.Sprintf("%-6s %-14s %-8s %s", "ID", "OPERATION", "TRIES", "LAST ERROR")))
	for i := range shown {
		item := &shown[i]
		row := fmt.Sprintf("%-6d %-14s %-8d %s",
			item.ID, item.Operation().String(), item.Attempts, truncate(item.LastError, 48))
		if item.Attempts > 0 {
			rows = append(rows, s.Warning.Render(row))
			continue
		}
		rows = append(rows, s.Normal.Render(row))
	}
	if hidden := len(items) - len(shown); hidden > 0 {
		rows = append(rows, s.Muted.Render(fmt.Sprintf("... and %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
