package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// CredentialVerifier resolves a bearer credential to the id of an existing
// user.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// MembershipAuthority answers whether a user belongs to a family.
type MembershipAuthority interface {
	FindMembership(ctx context.Context, familyID, userID string) (*models.Membership, error)
}

// ChatDirectory resolves a chat to its owning family.
type ChatDirectory interface {
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
}

type HandlerConfig struct {
	CookieName     string
	AllowedOrigins []string
	MaxFrameSize   int64
}

// Handler upgrades authenticated, authorized requests to WebSocket
// connections and keeps them registered for their lifetime.
//
// Every rejection is answered before the upgrade with a plain HTTP error
// whose JSON body carries the close code a client should act on:
// 4001 to log in again, 4003 for not being a member.
type Handler struct {
	hub          *Hub
	verifier     CredentialVerifier
	members      MembershipAuthority
	chats        ChatDirectory
	upgrader     websocket.Upgrader
	cookieName   string
	maxFrameSize int64
	logger       logging.Logger
}

func NewHandler(hub *Hub, verifier CredentialVerifier, members MembershipAuthority, chats ChatDirectory,
	cfg HandlerConfig, logger logging.Logger) *Handler {

	origins := newOriginPolicy(cfg.AllowedOrigins)
	return &Handler{
		hub:      hub,
		verifier: verifier,
		members:  members,
		chats:    chats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
		cookieName:   cfg.CookieName,
		maxFrameSize: cfg.MaxFrameSize,
		logger:       logger.With("module", "ws"),
	}
}

// Chat serves GET /families/:family_id/chats/:chat_id/ws.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	familyID, chatID := ps.ByName("family_id"), ps.ByName("chat_id")

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if !h.authorize(ctx, w, familyID, userID) {
		return
	}

	if uuid.Validate(chatID) != nil {
		reject(w, http.StatusForbidden, common.CloseForbidden)
		return
	}
	chat, err := h.chats.GetChat(ctx, chatID)
	if err != nil || chat.FamilyID != familyID {
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			h.logger.Error(ctx, "chat lookup failed", "chat_id", chatID, "error", err)
		}
		reject(w, http.StatusForbidden, common.CloseForbidden)
		return
	}

	h.serve(w, r, h.hub.Chats(), chatID, familyID, userID)
}

// Family serves GET /families/:family_id/ws.
func (h *Handler) Family(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	familyID := ps.ByName("family_id")

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if !h.authorize(r.Context(), w, familyID, userID) {
		return
	}

	h.serve(w, r, h.hub.Families(), familyID, familyID, userID)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	credential := CredentialFromRequest(r, h.cookieName)
	if credential == "" {
		reject(w, http.StatusUnauthorized, common.CloseUnauthorized)
		return "", false
	}

	userID, err := h.verifier.Verify(r.Context(), credential)
	if err != nil {
		h.logger.Debug(r.Context(), "credential rejected", "error", err)
		reject(w, http.StatusUnauthorized, common.CloseUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, familyID, userID string) bool {
	if uuid.Validate(familyID) != nil {
		reject(w, http.StatusForbidden, common.CloseForbidden)
		return false
	}

	if _, err := h.members.FindMembership(ctx, familyID, userID); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			h.logger.Error(ctx, "membership lookup failed", "family_id", familyID, "error", err)
		}
		reject(w, http.StatusForbidden, common.CloseForbidden)
		return false
	}
	return true
}

// serve upgrades the request, joins room and blocks until the peer leaves.
// Leave runs on every exit path once Join has happened.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, reg *Registry, room, familyID, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		h.logger.Warn(r.Context(), "upgrade failed", "room", room, "error", err)
		return
	}

	logger := h.logger.With("room", room, "user_id", userID)
	c := newWSConn(conn, userID, familyID, logger)
	go c.writePump()

	reg.Join(room, c)
	defer func() {
		reg.Leave(room, c)
		_ = c.Close()
	}()

	// the request context is not tied to the hijacked connection
	c.readLoop(context.WithoutCancel(r.Context()), h.maxFrameSize)
}

// CredentialFromRequest returns the bearer credential from the named cookie,
// falling back to an "Authorization: Bearer" header.
func CredentialFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

type rejection struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func reject(w http.ResponseWriter, status, code int) {
	msg := "unauthorized"
	if code == common.CloseForbidden {
		msg = "forbidden"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Code: code, Error: msg})
}
