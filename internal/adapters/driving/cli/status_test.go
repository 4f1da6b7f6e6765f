package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

func TestStatusCmd_Banner(t *testing.T) {
	svc := &mockOfflineService{status: domain.RegisterStatus{
		Online:  false,
		Pending: 3,
		Notices: []domain.Notice{{Kind: domain.NoticeOffline, Title: "You are offline"}},
	}}
	withServices(t, Services{Offline: svc})

	out, err := execute(t, "", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "Pending: 3")
	assert.Contains(t, out, "You are offline")
}

func TestStatusCmd_JSON(t *testing.T) {
	svc := &mockOfflineService{status: domain.RegisterStatus{Online: true, Pending: 1}}
	withServices(t, Services{Offline: svc})

	out, err := execute(t, "", "status", "--json")
	require.NoError(t, err)

	var got domain.RegisterStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Online)
	assert.Equal(t, 1, got.Pending)
}

func TestStatusCmd_ServiceError(t *testing.T) {
	withServices(t, Services{Offline: &mockOfflineService{statusErr: errors.New("closed")}})

	_, err := execute(t, "", "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get status")
}

func TestTerminalWidth_NonTerminal(t *testing.T) {
	width, tty := terminalWidth(new(bytes.Buffer))
	assert.False(t, tty)
	assert.Equal(t, defaultWidth, width)
}
