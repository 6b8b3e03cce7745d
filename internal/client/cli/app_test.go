package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lentik/internal/client/client"
	"github.com/dmitrijs2005/lentik/internal/client/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the reader goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeAPI dials a test socket server instead of a real Lentik server.
type fakeAPI struct {
	wsURL    string
	loginErr error
	subErr   error

	user, pin        string
	familyID, chatID string

	upload    *client.GalleryUpload
	uploadErr error
	mediaType string
	caption   string
}

func (f *fakeAPI) AddGalleryItem(_ context.Context, familyID, mediaType, caption string) (*client.GalleryUpload, error) {
	f.familyID, f.mediaType, f.caption = familyID, mediaType, caption
	return f.upload, f.uploadErr
}

func (f *fakeAPI) HTTP() *http.Client {
	return http.DefaultClient
}

func (f *fakeAPI) Login(_ context.Context, userName, pin string) error {
	f.user, f.pin = userName, pin
	return f.loginErr
}

func (f *fakeAPI) Subscribe(ctx context.Context, familyID, chatID string) (*websocket.Conn, error) {
	f.familyID, f.chatID = familyID, chatID
	if f.subErr != nil {
		return nil, f.subErr
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL, nil)
	return conn, err
}

// socketServer sends frames, then waits for a ping (if wantPing) before
// closing normally. Received frames are reported on the returned channel.
func socketServer(t *testing.T, frames []string, wantPing bool) (string, <-chan string) {
	t.Helper()
	got := make(chan string, 16)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range frames {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		if wantPing {
			_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
			if _, data, err := conn.ReadMessage(); err == nil {
				got <- string(data)
				_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), got
}

func newTestApp(t *testing.T, api API, stdin string, args ...string) (*App, *syncBuffer) {
	t.Helper()
	stubPin(t, "1234", nil)
	out := &syncBuffer{}
	cfg := &config.Config{UserName: "alice", PingInterval: 20 * time.Millisecond, Args: args}
	return &App{config: cfg, api: api, reader: rdr(stdin), out: out}, out
}

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"tail"}, {"tail", "a", "b", "c"}, {"follow", "fam"}, {"upload", "fam"}} {
		app, _ := newTestApp(t, &fakeAPI{}, "", args...)
		err := app.Run(context.Background())
		assert.ErrorIs(t, err, ErrUsage, "%v", args)
	}

	app, out := newTestApp(t, &fakeAPI{}, "", "help")
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "tail <family_id> [chat_id]")
	assert.Contains(t, out.String(), "upload <family_id> <file> [caption]")
}

func TestTail_PrintsEventsAndPings(t *testing.T) {
	url, got := socketServer(t, []string{
		`{"type":"member_joined","user_id":"u2","display_name":"Bob"}`,
		`{"type":"new_message","message":{"id":"m1","author_id":"u2","text":"hi @alice"}}`,
	}, true)

	api := &fakeAPI{wsURL: url}
	app, out := newTestApp(t, api, "", "tail", "fam-1", "chat-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Run(ctx))

	assert.Equal(t, "alice", api.user)
	assert.Equal(t, "1234", api.pin)
	assert.Equal(t, "fam-1", api.familyID)
	assert.Equal(t, "chat-1", api.chatID)

	select {
	case frame := <-got:
		assert.Equal(t, "ping", frame)
	default:
		t.Fatal("server never received a ping")
	}

	lines := out.String()
	assert.Contains(t, lines, "Listening on chat chat-1")
	assert.Contains(t, lines, "[joined] Bob\n")
	assert.Contains(t, lines, "[message] u2: hi @alice\n")
	assert.NotContains(t, lines, "pong")
}

func TestTail_StopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	api := &fakeAPI{wsURL: "ws" + strings.TrimPrefix(srv.URL, "http")}
	app, _ := newTestApp(t, api, "", "tail", "fam-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("tail did not stop after cancel")
	}
	assert.Equal(t, "", api.chatID)
}

func TestTail_Errors(t *testing.T) {
	t.Run("wrong pin", func(t *testing.T) {
		app, _ := newTestApp(t, &fakeAPI{loginErr: client.ErrUnauthorized}, "", "tail", "fam-1")
		err := app.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wrong username or PIN")
	})

	t.Run("not a member", func(t *testing.T) {
		app, _ := newTestApp(t, &fakeAPI{subErr: client.ErrForbidden}, "", "tail", "fam-1")
		err := app.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a member")
	})

	t.Run("prompts for username", func(t *testing.T) {
		api := &fakeAPI{subErr: client.ErrUnavailable}
		app, out := newTestApp(t, api, "bob\n", "tail", "fam-1")
		app.config.UserName = ""

		err := app.Run(context.Background())
		assert.ErrorIs(t, err, client.ErrUnavailable)
		assert.Equal(t, "bob", api.user)
		assert.Contains(t, out.String(), "Username\n> ")
	})
}
