// Package realtime keeps the live WebSocket connections of the server and
// fans events out to them.
//
// A Registry maps a room key to the set of connections joined to it. The Hub
// owns two independent registries, one keyed by chat id and one keyed by
// family id, and is created once by the composition root and injected into
// every handler and service that needs to broadcast.
//
// Broadcast is best effort: the payload is encoded once, every connection
// present when the broadcast starts gets the same bytes, and any connection
// that cannot take the frame is pruned after the fan-out completes. Nothing
// is queued for connections that join later.
package realtime
