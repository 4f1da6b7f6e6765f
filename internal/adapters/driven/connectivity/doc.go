// Package connectivity provides sources of online/offline signals for the
// connectivity monitor.
//
// Noop always reports online and never changes. Manual is toggled by the
// HTTP API and tests. FileSource watches a status file maintained by the
// host's network agent.
package connectivity
