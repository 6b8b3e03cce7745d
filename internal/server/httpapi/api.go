// Package httpapi exposes the REST surface of the server over httprouter.
// Handlers decode JSON, call a service and map its sentinel errors to
// status codes; realtime endpoints are mounted from the realtime package.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/realtime"
	"github.com/dmitrijs2005/lentik/internal/server/services"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 20

type UserService interface {
	Login(ctx context.Context, username, pin string) (*services.AuthResult, error)
	Authenticate(ctx context.Context, credential string) (*models.User, error)
	Logout(ctx context.Context, credential string) error
	RegisterFromInvite(ctx context.Context, token, displayName, pin string) (*services.AuthResult, error)
}

type FamilyService interface {
	CreateFamily(ctx context.Context, userID, name string) (*models.Family, error)
	CreateInvite(ctx context.Context, userID, familyID string, hours int) (*models.Invite, error)
	AcceptInvite(ctx context.Context, userID, token string) (string, error)
	ListMembers(ctx context.Context, userID, familyID string) ([]models.Member, error)
	KickMember(ctx context.Context, userID, familyID, memberID string) error
}

type ChatService interface {
	ListChats(ctx context.Context, userID, familyID string) ([]models.Chat, error)
	CreateChat(ctx context.Context, userID, familyID, name string) (*models.Chat, error)
	DeleteChat(ctx context.Context, userID, familyID, chatID string) error
	ListMessages(ctx context.Context, userID, familyID, chatID, beforeID string, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, userID, familyID, chatID, text string, replyToID *string) (*models.Message, error)
	EditMessage(ctx context.Context, userID, familyID, chatID, messageID, text string) (*models.Message, error)
	DeleteMessage(ctx context.Context, userID, familyID, chatID, messageID string) error
}

type CalendarService interface {
	ListEvents(ctx context.Context, userID, familyID string, year, month int) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, userID, familyID string, in services.NewCalendarEvent) (*models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, familyID, eventID string, in services.UpdateCalendarEvent) (*models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, familyID, eventID string) error
}

type GalleryService interface {
	AddItem(ctx context.Context, userID, familyID, mediaType string, caption *string) (*services.GalleryUpload, error)
	ListItems(ctx context.Context, userID, familyID string) ([]services.GalleryEntry, error)
	DeleteItem(ctx context.Context, userID, familyID, itemID string) error
}

type ChannelService interface {
	ListChannels(ctx context.Context, userID, familyID string) ([]models.Channel, error)
	CreateChannel(ctx context.Context, userID, familyID, name string, description *string) (*models.Channel, error)
	ListPosts(ctx context.Context, userID, familyID, channelID string, limit, offset int) ([]models.Post, error)
	CreatePost(ctx context.Context, userID, familyID, channelID, text string, mediaURLs []string) (*models.Post, error)
}

// CookieConfig controls the credential cookie set on login.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// API holds the services behind every REST route.
type API struct {
	users    UserService
	families FamilyService
	chats    ChatService
	calendar CalendarService
	gallery  GalleryService
	channels ChannelService
	ws       *realtime.Handler
	cookie   CookieConfig
	logger   logging.Logger
}

func New(users UserService, families FamilyService, chats ChatService, calendar CalendarService,
	gallery GalleryService, channels ChannelService, ws *realtime.Handler, cookie CookieConfig, logger logging.Logger) *API {
	return &API{
		users:    users,
		families: families,
		chats:    chats,
		calendar: calendar,
		gallery:  gallery,
		channels: channels,
		ws:       ws,
		cookie:   cookie,
		logger:   logger.With("module", "http"),
	}
}

// handlerFunc is an httprouter handler that reports failures as errors;
// handle turns them into JSON error responses.
type handlerFunc func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error

// authedFunc additionally receives the authenticated caller.
type authedFunc func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error

func (a *API) handle(fn handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if err := fn(w, r, ps); err != nil {
			status, msg := statusFor(err)
			if status == http.StatusInternalServerError {
				a.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
			}
			writeError(w, status, msg)
		}
	}
}

func (a *API) authed(fn authedFunc) httprouter.Handle {
	return a.handle(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) error {
		credential := realtime.CredentialFromRequest(r, a.cookie.Name)
		if credential == "" {
			return common.ErrorUnauthorized
		}
		user, err := a.users.Authenticate(r.Context(), credential)
		if err != nil {
			return err
		}
		return fn(w, r, ps, user)
	})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty body", common.ErrorValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", common.ErrorValidation, err)
	}
	return nil
}

// pathID returns a uuid path parameter. Anything else cannot name a stored
// row, so it is reported as not found.
func pathID(ps httprouter.Params, name string) (string, error) {
	v := ps.ByName(name)
	if uuid.Validate(v) != nil {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// bodyID validates an id carried in a request body.
func bodyID(v, field string) (string, error) {
	if uuid.Validate(v) != nil {
		return "", fmt.Errorf("%w: %s must be a UUID", common.ErrorValidation, field)
	}
	return v, nil
}

// orEmpty keeps empty lists encoding as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
