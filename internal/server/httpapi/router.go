package httpapi

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Routes builds the router for every REST and WebSocket endpoint.
func (a *API) Routes() http.Handler {
	r := httprouter.New()

	r.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.POST("/auth/pin", a.handle(a.login))
	r.POST("/auth/logout", a.handle(a.logout))
	r.POST("/auth/invite", a.handle(a.registerFromInvite))
	r.GET("/me", a.authed(a.me))

	r.POST("/families", a.authed(a.createFamily))
	r.GET("/families/:family_id/members", a.authed(a.listMembers))
	r.DELETE("/families/:family_id/members/:user_id", a.authed(a.kickMember))

	r.POST("/invites", a.authed(a.createInvite))
	r.POST("/invites/accept", a.authed(a.acceptInvite))

	// httprouter cannot hold a static /families/join beside
	// /families/:family_id, so the join path is matched on the parameter.
	joinFamily := a.authed(a.acceptInvite)
	r.POST("/families/:family_id", func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		if ps.ByName("family_id") != "join" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		joinFamily(w, req, ps)
	})

	r.GET("/families/:family_id/chats", a.authed(a.listChats))
	r.POST("/families/:family_id/chats", a.authed(a.createChat))
	r.DELETE("/families/:family_id/chats/:chat_id", a.authed(a.deleteChat))
	r.GET("/families/:family_id/chats/:chat_id/messages", a.authed(a.listMessages))
	r.POST("/families/:family_id/chats/:chat_id/messages", a.authed(a.sendMessage))
	r.PATCH("/families/:family_id/chats/:chat_id/messages/:message_id", a.authed(a.editMessage))
	r.DELETE("/families/:family_id/chats/:chat_id/messages/:message_id", a.authed(a.deleteMessage))

	r.GET("/families/:family_id/calendar", a.authed(a.listEvents))
	r.POST("/families/:family_id/calendar", a.authed(a.createEvent))
	r.PATCH("/families/:family_id/calendar/:event_id", a.authed(a.updateEvent))
	r.DELETE("/families/:family_id/calendar/:event_id", a.authed(a.deleteEvent))

	r.GET("/families/:family_id/gallery", a.authed(a.listGallery))
	r.POST("/families/:family_id/gallery", a.authed(a.addGalleryItem))
	r.DELETE("/families/:family_id/gallery/:item_id", a.authed(a.deleteGalleryItem))

	r.GET("/families/:family_id/channels", a.authed(a.listChannels))
	r.POST("/families/:family_id/channels", a.authed(a.createChannel))
	r.GET("/families/:family_id/channels/:channel_id/posts", a.authed(a.listPosts))
	r.POST("/families/:family_id/channels/:channel_id/posts", a.authed(a.createPost))

	if a.ws != nil {
		r.GET("/families/:family_id/chats/:chat_id/ws", a.ws.Chat)
		r.GET("/families/:family_id/ws", a.ws.Family)
	}

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.PanicHandler = func(w http.ResponseWriter, req *http.Request, v any) {
		a.logger.Error(req.Context(), "handler panic", "path", req.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}

	return a.logRequests(r)
}

// statusRecorder remembers the status written by the wrapped handler. It
// stays an http.Hijacker so WebSocket upgrades pass through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		a.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	})
}
