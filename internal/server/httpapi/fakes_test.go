package httpapi

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/services"
)

var errBoom = errors.New("boom")

// call records one service invocation with its arguments.
type call struct {
	name string
	args []any
}

// fakeBackend implements every service interface the API depends on.
// Each method records its call and then returns whatever the matching
// field holds.
type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	users map[string]*models.User // credential -> user

	loginRes    *services.AuthResult
	loginErr    error
	logoutErr   error
	registerRes *services.AuthResult
	registerErr error

	family      *models.Family
	invite      *models.Invite
	acceptedFam string
	members     []models.Member
	chats       []models.Chat
	chat        *models.Chat
	messages    []models.Message
	message     *models.Message
	events      []models.CalendarEvent
	event       *models.CalendarEvent
	upload      *services.GalleryUpload
	entries     []services.GalleryEntry
	channels    []models.Channel
	channel     *models.Channel
	posts       []models.Post
	post        *models.Post

	// err is returned by every non-auth method when set.
	err error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]*models.User{}}
}

func (f *fakeBackend) record(name string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: args})
}

func (f *fakeBackend) last(name string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].name == name {
			return f.calls[i], true
		}
	}
	return call{}, false
}

func (f *fakeBackend) called(name string) bool {
	_, ok := f.last(name)
	return ok
}

// UserService

func (f *fakeBackend) Login(_ context.Context, username, pin string) (*services.AuthResult, error) {
	f.record("Login", username, pin)
	return f.loginRes, f.loginErr
}

func (f *fakeBackend) Authenticate(_ context.Context, credential string) (*models.User, error) {
	if u, ok := f.users[credential]; ok {
		return u, nil
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeBackend) Logout(_ context.Context, credential string) error {
	f.record("Logout", credential)
	return f.logoutErr
}

func (f *fakeBackend) RegisterFromInvite(_ context.Context, token, displayName, pin string) (*services.AuthResult, error) {
	f.record("RegisterFromInvite", token, displayName, pin)
	return f.registerRes, f.registerErr
}

// FamilyService

func (f *fakeBackend) CreateFamily(_ context.Context, userID, name string) (*models.Family, error) {
	f.record("CreateFamily", userID, name)
	return f.family, f.err
}

func (f *fakeBackend) CreateInvite(_ context.Context, userID, familyID string, hours int) (*models.Invite, error) {
	f.record("CreateInvite", userID, familyID, hours)
	return f.invite, f.err
}

func (f *fakeBackend) AcceptInvite(_ context.Context, userID, token string) (string, error) {
	f.record("AcceptInvite", userID, token)
	return f.acceptedFam, f.err
}

func (f *fakeBackend) ListMembers(_ context.Context, userID, familyID string) ([]models.Member, error) {
	f.record("ListMembers", userID, familyID)
	return f.members, f.err
}

func (f *fakeBackend) KickMember(_ context.Context, userID, familyID, memberID string) error {
	f.record("KickMember", userID, familyID, memberID)
	return f.err
}

// ChatService

func (f *fakeBackend) ListChats(_ context.Context, userID, familyID string) ([]models.Chat, error) {
	f.record("ListChats", userID, familyID)
	return f.chats, f.err
}

func (f *fakeBackend) CreateChat(_ context.Context, userID, familyID, name string) (*models.Chat, error) {
	f.record("CreateChat", userID, familyID, name)
	return f.chat, f.err
}

func (f *fakeBackend) DeleteChat(_ context.Context, userID, familyID, chatID string) error {
	f.record("DeleteChat", userID, familyID, chatID)
	return f.err
}

func (f *fakeBackend) ListMessages(_ context.Context, userID, familyID, chatID, beforeID string, limit int) ([]models.Message, error) {
	f.record("ListMessages", userID, familyID, chatID, beforeID, limit)
	return f.messages, f.err
}

func (f *fakeBackend) SendMessage(_ context.Context, userID, familyID, chatID, text string, replyToID *string) (*models.Message, error) {
	f.record("SendMessage", userID, familyID, chatID, text, replyToID)
	return f.message, f.err
}

func (f *fakeBackend) EditMessage(_ context.Context, userID, familyID, chatID, messageID, text string) (*models.Message, error) {
	f.record("EditMessage", userID, familyID, chatID, messageID, text)
	return f.message, f.err
}

func (f *fakeBackend) DeleteMessage(_ context.Context, userID, familyID, chatID, messageID string) error {
	f.record("DeleteMessage", userID, familyID, chatID, messageID)
	return f.err
}

// CalendarService

func (f *fakeBackend) ListEvents(_ context.Context, userID, familyID string, year, month int) ([]models.CalendarEvent, error) {
	f.record("ListEvents", userID, familyID, year, month)
	return f.events, f.err
}

func (f *fakeBackend) CreateEvent(_ context.Context, userID, familyID string, in services.NewCalendarEvent) (*models.CalendarEvent, error) {
	f.record("CreateEvent", userID, familyID, in)
	return f.event, f.err
}

func (f *fakeBackend) UpdateEvent(_ context.Context, userID, familyID, eventID string, in services.UpdateCalendarEvent) (*models.CalendarEvent, error) {
	f.record("UpdateEvent", userID, familyID, eventID, in)
	return f.event, f.err
}

func (f *fakeBackend) DeleteEvent(_ context.Context, userID, familyID, eventID string) error {
	f.record("DeleteEvent", userID, familyID, eventID)
	return f.err
}

// GalleryService

func (f *fakeBackend) AddItem(_ context.Context, userID, familyID, mediaType string, caption *string) (*services.GalleryUpload, error) {
	f.record("AddItem", userID, familyID, mediaType, caption)
	return f.upload, f.err
}

func (f *fakeBackend) ListItems(_ context.Context, userID, familyID string) ([]services.GalleryEntry, error) {
	f.record("ListItems", userID, familyID)
	return f.entries, f.err
}

func (f *fakeBackend) DeleteItem(_ context.Context, userID, familyID, itemID string) error {
	f.record("DeleteItem", userID, familyID, itemID)
	return f.err
}

// ChannelService

func (f *fakeBackend) ListChannels(_ context.Context, userID, familyID string) ([]models.Channel, error) {
	f.record("ListChannels", userID, familyID)
	return f.channels, f.err
}

func (f *fakeBackend) CreateChannel(_ context.Context, userID, familyID, name string, description *string) (*models.Channel, error) {
	f.record("CreateChannel", userID, familyID, name, description)
	return f.channel, f.err
}

func (f *fakeBackend) ListPosts(_ context.Context, userID, familyID, channelID string, limit, offset int) ([]models.Post, error) {
	f.record("ListPosts", userID, familyID, channelID, limit, offset)
	return f.posts, f.err
}

func (f *fakeBackend) CreatePost(_ context.Context, userID, familyID, channelID, text string, mediaURLs []string) (*models.Post, error) {
	f.record("CreatePost", userID, familyID, channelID, text, mediaURLs)
	return f.post, f.err
}
