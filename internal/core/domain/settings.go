package domain

import "time"

// ConnectivitySourceType selects where online/offline signals come from.
type ConnectivitySourceType string

// Available connectivity sources.
const (
	// ConnectivityNoop always reports online. Degraded mode without offline awareness.
	ConnectivityNoop ConnectivitySourceType = "noop"

	// ConnectivityManual is toggled programmatically (HTTP API, CLI).
	ConnectivityManual ConnectivitySourceType = "manual"

	// ConnectivityFile watches a status file written by the host network agent.
	ConnectivityFile ConnectivitySourceType = "file"
)

// IsValid returns true if the source type is recognised.
func (t ConnectivitySourceType) IsValid() bool {
	switch t {
	case ConnectivityNoop, ConnectivityManual, ConnectivityFile:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ConnectivitySourceType) String() string {
	return string(t)
}

// APISettings configures the remote REST API.
type APISettings struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string

	// Token is the bearer access token.
	Token string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls.
	RequestsPerSecond float64

	// Burst is the throttle burst size.
	Burst int
}

// ConnectivitySettings configures the connectivity monitor.
type ConnectivitySettings struct {
	Source     ConnectivitySourceType
	StatusFile string
}

// Settings holds all application settings.
type Settings struct {
	API          APISettings
	DataDir      string
	Connectivity ConnectivitySettings

	// OnlineNoticeTTL is how long the back-online notice stays up.
	OnlineNoticeTTL time.Duration

	Scheduler SchedulerConfig

	// ServerAddr is the listen address of the local HTTP API.
	ServerAddr string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		API: APISettings{
			BaseURL:           "http://localhost:8000/api",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Connectivity: ConnectivitySettings{
			Source: ConnectivityManual,
		},
		OnlineNoticeTTL: 3 * time.Second,
		Scheduler:       DefaultSchedulerConfig(),
		ServerAddr:      "127.0.0.1:7420",
	}
}
