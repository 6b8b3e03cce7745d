package realtime

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/events"
)

// Hub owns the chat-room and family-room registries.
type Hub struct {
	chats    *Registry
	families *Registry
	logger   logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	logger = logger.With("module", "realtime")
	return &Hub{
		chats:    NewRegistry("chats", logger),
		families: NewRegistry("families", logger),
		logger:   logger,
	}
}

func (h *Hub) Chats() *Registry    { return h.chats }
func (h *Hub) Families() *Registry { return h.families }

// BroadcastToChat sends ev to every connection joined to chatID.
func (h *Hub) BroadcastToChat(ctx context.Context, chatID string, ev events.Event) {
	h.broadcast(ctx, h.chats, chatID, ev)
}

// BroadcastToFamily sends ev to every connection joined to familyID.
func (h *Hub) BroadcastToFamily(ctx context.Context, familyID string, ev events.Event) {
	h.broadcast(ctx, h.families, familyID, ev)
}

func (h *Hub) broadcast(ctx context.Context, reg *Registry, room string, ev events.Event) {
	payload, err := events.Encode(ev)
	if err != nil {
		h.logger.Error(ctx, "event encoding failed", "type", ev.Type(), "error", err)
		return
	}
	n := reg.Broadcast(ctx, room, payload)
	h.logger.Debug(ctx, "broadcast", "type", ev.Type(), "room", room, "delivered", n)
}

// DisconnectUser closes every connection userID holds inside familyID, both
// on the family room and on the family's chat rooms. It is called once the
// membership is gone so the user stops receiving the family's events.
func (h *Hub) DisconnectUser(ctx context.Context, familyID, userID string) {
	match := func(c Conn) bool {
		return c.FamilyID() == familyID && c.UserID() == userID
	}
	n := h.families.Evict(ctx, match) + h.chats.Evict(ctx, match)
	h.logger.Info(ctx, "user disconnected", "family_id", familyID, "user_id", userID, "connections", n)
}

// Close disconnects every live connection in both registries.
func (h *Hub) Close() {
	h.chats.CloseAll()
	h.families.CloseAll()
}
