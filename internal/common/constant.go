package common

// DefaultCookieName is the cookie that carries the bearer credential for both
// HTTP requests and WebSocket upgrades.
const DefaultCookieName = "lentik_token"

// Close codes reported to a rejected realtime connection attempt.
const (
	CloseUnauthorized = 4001
	CloseForbidden    = 4003
)

// Application-level keepalive frames exchanged over an open realtime connection.
const (
	PingFrame = "ping"
	PongFrame = "pong"
)
