package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/dbx"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/calendar"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/channels"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/chats"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/families"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/gallery"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/invites"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/messages"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/posts"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for every repository. It ignores the
// DBTX it is bound to, so transactions are only visible through sqlmock.
type memStore struct {
	mu  sync.Mutex
	seq int
	now time.Time

	users       map[string]*models.User
	families    map[string]*models.Family
	memberships []models.Membership
	invites     map[string]*models.Invite
	chats       map[string]*models.Chat
	messages    []*models.Message
	calendar    []models.CalendarEvent
	gallery     []models.GalleryItem
	channels    []models.Channel
	posts       []models.Post

	// failures injected per operation name, e.g. "users.Create"
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		now:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		users:    map[string]*models.User{},
		families: map[string]*models.Family{},
		invites:  map[string]*models.Invite{},
		chats:    map[string]*models.Chat{},
		fail:     map[string]error{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

// tick returns a strictly increasing timestamp.
func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) addUser(name, pinHash string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: s.nextID("u"), UserName: name, PinHash: pinHash, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addFamily(name string) *models.Family {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &models.Family{ID: s.nextID("f"), Name: name, CreatedAt: s.tick()}
	s.families[f.ID] = f
	return f
}

func (s *memStore) addMember(familyID, userID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, models.Membership{
		ID: s.nextID("m"), FamilyID: familyID, UserID: userID, Role: role, CreatedAt: s.tick(),
	})
}

func (s *memStore) addChat(familyID, name string) *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Chat{ID: s.nextID("c"), FamilyID: familyID, Name: name, CreatedAt: s.tick()}
	s.chats[c.ID] = c
	return c
}

func (s *memStore) addInvite(familyID, token string, expires time.Time) *models.Invite {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := &models.Invite{ID: s.nextID("i"), FamilyID: familyID, Token: token, ExpiresAt: expires, CreatedAt: s.tick()}
	s.invites[inv.ID] = inv
	return inv
}

func (s *memStore) isMember(familyID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.memberships, func(m models.Membership) bool {
		return m.FamilyID == familyID && m.UserID == userID
	})
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.s.users {
		if x.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	out := &models.User{ID: r.s.nextID("u"), UserName: u.UserName, PinHash: u.PinHash, CreatedAt: r.s.tick()}
	r.s.users[out.ID] = out
	return out, nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r memUsers) GetByUserName(_ context.Context, name string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.GetByUserName"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.UserName == name {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- families ---

type memFamilies struct{ s *memStore }

func (r memFamilies) Create(_ context.Context, name string) (*models.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("families.Create"); err != nil {
		return nil, err
	}
	f := &models.Family{ID: r.s.nextID("f"), Name: name, CreatedAt: r.s.tick()}
	r.s.families[f.ID] = f
	return f, nil
}

func (r memFamilies) GetByID(_ context.Context, id string) (*models.Family, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.families[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

// --- memberships ---

type memMemberships struct{ s *memStore }

func (r memMemberships) Create(_ context.Context, m *models.Membership) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("memberships.Create"); err != nil {
		return nil, err
	}
	for _, x := range r.s.memberships {
		if x.FamilyID == m.FamilyID && x.UserID == m.UserID {
			return nil, common.ErrorAlreadyExists
		}
	}
	out := models.Membership{ID: r.s.nextID("m"), FamilyID: m.FamilyID, UserID: m.UserID, Role: m.Role, CreatedAt: r.s.tick()}
	r.s.memberships = append(r.s.memberships, out)
	return &out, nil
}

func (r memMemberships) Find(_ context.Context, familyID, userID string) (*models.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("memberships.Find"); err != nil {
		return nil, err
	}
	for _, x := range r.s.memberships {
		if x.FamilyID == familyID && x.UserID == userID {
			m := x
			return &m, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memMemberships) ListMembers(_ context.Context, familyID string) ([]models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Member{}
	for _, x := range r.s.memberships {
		if x.FamilyID != familyID {
			continue
		}
		name := ""
		if u, ok := r.s.users[x.UserID]; ok {
			name = u.UserName
		}
		out = append(out, models.Member{UserID: x.UserID, UserName: name, Role: x.Role, JoinedAt: x.CreatedAt})
	}
	return out, nil
}

func (r memMemberships) Delete(_ context.Context, familyID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.memberships, func(m models.Membership) bool {
		return m.FamilyID == familyID && m.UserID == userID
	})
	if i < 0 {
		return common.ErrorNotFound
	}
	r.s.memberships = slices.Delete(r.s.memberships, i, i+1)
	return nil
}

// --- invites ---

type memInvites struct{ s *memStore }

func (r memInvites) Create(_ context.Context, inv *models.Invite) (*models.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *inv
	out.ID = r.s.nextID("i")
	out.CreatedAt = r.s.tick()
	r.s.invites[out.ID] = &out
	return &out, nil
}

func (r memInvites) GetByToken(_ context.Context, token string) (*models.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invites {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memInvites) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("invites.Delete"); err != nil {
		return err
	}
	delete(r.s.invites, id)
	return nil
}

// --- chats ---

type memChats struct{ s *memStore }

func (r memChats) Create(_ context.Context, c *models.Chat) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *c
	out.ID = r.s.nextID("c")
	out.CreatedAt = r.s.tick()
	r.s.chats[out.ID] = &out
	return &out, nil
}

func (r memChats) GetByID(_ context.Context, id string) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (r memChats) ListByFamily(_ context.Context, familyID string) ([]models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Chat{}
	for _, c := range r.s.chats {
		if c.FamilyID == familyID {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b models.Chat) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r memChats) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chats[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.chats, id)
	return nil
}

// --- messages ---

type memMessages struct{ s *memStore }

func (r memMessages) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("messages.Create"); err != nil {
		return nil, err
	}
	out := *m
	out.ID = r.s.nextID("msg")
	out.CreatedAt = r.s.tick()
	r.s.messages = append(r.s.messages, &out)
	cp := out
	return &cp, nil
}

func (r memMessages) GetByID(_ context.Context, id string) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// List mirrors the SQL: newest first up to limit, then reversed.
func (r memMessages) List(_ context.Context, chatID, beforeID string, limit int) ([]models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var anchor *time.Time
	if beforeID != "" {
		for _, m := range r.s.messages {
			if m.ID == beforeID && m.ChatID == chatID {
				t := m.CreatedAt
				anchor = &t
			}
		}
	}
	out := []models.Message{}
	for i := len(r.s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.s.messages[i]
		if m.ChatID != chatID {
			continue
		}
		if anchor != nil && !m.CreatedAt.Before(*anchor) {
			continue
		}
		out = append(out, *m)
	}
	slices.Reverse(out)
	return out, nil
}

func (r memMessages) UpdateText(_ context.Context, id, text string) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ID == id {
			m.Text = text
			m.Edited = true
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memMessages) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.messages, func(m *models.Message) bool { return m.ID == id })
	if i < 0 {
		return common.ErrorNotFound
	}
	r.s.messages = slices.Delete(r.s.messages, i, i+1)
	return nil
}

// --- calendar ---

type memCalendar struct{ s *memStore }

func (r memCalendar) Create(_ context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *ev
	out.ID = r.s.nextID("e")
	out.CreatedAt = r.s.tick()
	r.s.calendar = append(r.s.calendar, out)
	return &out, nil
}

func (r memCalendar) ListRange(_ context.Context, familyID string, from, to time.Time) ([]models.CalendarEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.CalendarEvent{}
	for _, ev := range r.s.calendar {
		if ev.FamilyID == familyID && !ev.StartsAt.Before(from) && ev.StartsAt.Before(to) {
			out = append(out, ev)
		}
	}
	slices.SortFunc(out, func(a, b models.CalendarEvent) int { return a.StartsAt.Compare(b.StartsAt) })
	return out, nil
}

func (r memCalendar) GetByID(_ context.Context, id string) (*models.CalendarEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ev := range r.s.calendar {
		if ev.ID == id {
			return &ev, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memCalendar) Update(_ context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("calendar.Update"); err != nil {
		return nil, err
	}
	for i := range r.s.calendar {
		if r.s.calendar[i].ID == ev.ID {
			r.s.calendar[i] = *ev
			out := *ev
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memCalendar) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.calendar, func(ev models.CalendarEvent) bool { return ev.ID == id })
	if i < 0 {
		return common.ErrorNotFound
	}
	r.s.calendar = slices.Delete(r.s.calendar, i, i+1)
	return nil
}

// --- gallery ---

type memGallery struct{ s *memStore }

func (r memGallery) Create(_ context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("gallery.Create"); err != nil {
		return nil, err
	}
	out := *it
	out.ID = r.s.nextID("g")
	out.CreatedAt = r.s.tick()
	r.s.gallery = append(r.s.gallery, out)
	return &out, nil
}

func (r memGallery) ListByFamily(_ context.Context, familyID string) ([]models.GalleryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.GalleryItem{}
	for i := len(r.s.gallery) - 1; i >= 0; i-- {
		if r.s.gallery[i].FamilyID == familyID {
			out = append(out, r.s.gallery[i])
		}
	}
	return out, nil
}

func (r memGallery) GetByID(_ context.Context, id string) (*models.GalleryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.gallery {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memGallery) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("gallery.Delete"); err != nil {
		return err
	}
	i := slices.IndexFunc(r.s.gallery, func(it models.GalleryItem) bool { return it.ID == id })
	if i < 0 {
		return common.ErrorNotFound
	}
	r.s.gallery = slices.Delete(r.s.gallery, i, i+1)
	return nil
}

// --- channels ---

type memChannels struct{ s *memStore }

func (r memChannels) Create(_ context.Context, ch *models.Channel) (*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *ch
	out.ID = r.s.nextID("ch")
	out.CreatedAt = r.s.tick()
	r.s.channels = append(r.s.channels, out)
	return &out, nil
}

func (r memChannels) GetByID(_ context.Context, id string) (*models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ch := range r.s.channels {
		if ch.ID == id {
			return &ch, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memChannels) ListByFamily(_ context.Context, familyID string) ([]models.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Channel{}
	for _, ch := range r.s.channels {
		if ch.FamilyID == familyID {
			out = append(out, ch)
		}
	}
	return out, nil
}

// --- posts ---

type memPosts struct{ s *memStore }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *p
	out.ID = r.s.nextID("p")
	out.CreatedAt = r.s.tick()
	r.s.posts = append(r.s.posts, out)
	return &out, nil
}

func (r memPosts) ListByChannel(_ context.Context, channelID string, limit, offset int) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Post{}
	skipped := 0
	for i := len(r.s.posts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.posts[i].ChannelID != channelID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, r.s.posts[i])
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return memUsers{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return nil }
func (m *fakeRepoManager) Families(dbx.DBTX) families.Repository        { return memFamilies{m.s} }
func (m *fakeRepoManager) Memberships(dbx.DBTX) memberships.Repository  { return memMemberships{m.s} }
func (m *fakeRepoManager) Invites(dbx.DBTX) invites.Repository          { return memInvites{m.s} }
func (m *fakeRepoManager) Chats(dbx.DBTX) chats.Repository              { return memChats{m.s} }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return memMessages{m.s} }
func (m *fakeRepoManager) Calendar(dbx.DBTX) calendar.Repository        { return memCalendar{m.s} }
func (m *fakeRepoManager) Gallery(dbx.DBTX) gallery.Repository          { return memGallery{m.s} }
func (m *fakeRepoManager) Channels(dbx.DBTX) channels.Repository        { return memChannels{m.s} }
func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository              { return memPosts{m.s} }

// --- broadcaster ---

type published struct {
	Scope string // "chat" or "family"
	Room  string
	Event events.Event
}

type fakeHub struct {
	mu  sync.Mutex
	out []published
	// "family/user" pairs passed to DisconnectUser
	disconnected []string
}

func (h *fakeHub) BroadcastToChat(_ context.Context, chatID string, ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out = append(h.out, published{Scope: "chat", Room: chatID, Event: ev})
}

func (h *fakeHub) BroadcastToFamily(_ context.Context, familyID string, ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out = append(h.out, published{Scope: "family", Room: familyID, Event: ev})
}

func (h *fakeHub) DisconnectUser(_ context.Context, familyID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, familyID+"/"+userID)
}

func (h *fakeHub) drops() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.disconnected)
}

func (h *fakeHub) all() []published {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.out)
}

// --- credentials ---

type fakeCredentials struct {
	issueErr  error
	verifyErr error
	revokeErr error
	revoked   []string
}

func (c *fakeCredentials) Issue(_ context.Context, userID string) (string, error) {
	if c.issueErr != nil {
		return "", c.issueErr
	}
	return "cred-" + userID, nil
}

func (c *fakeCredentials) Verify(_ context.Context, credential string) (string, error) {
	if c.verifyErr != nil {
		return "", c.verifyErr
	}
	userID, ok := strings.CutPrefix(credential, "cred-")
	if !ok || userID == "" {
		return "", common.ErrInvalidToken
	}
	return userID, nil
}

func (c *fakeCredentials) Revoke(_ context.Context, credential string) error {
	if c.revokeErr != nil {
		return c.revokeErr
	}
	c.revoked = append(c.revoked, credential)
	return nil
}
