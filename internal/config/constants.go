package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Durable blob filename under the data dir
const SessionBlobFilename = "active_sessions.json"

// Device identity filename under the data dir
const DeviceIDFilename = "device_id"

// Remote insert timeout for the end-of-session hand-off
const RemoteCommitTimeout = 10 * time.Second
