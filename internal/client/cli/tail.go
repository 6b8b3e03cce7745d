package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lentik/internal/client/client"
	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/gorilla/websocket"
)

// tail prints every event from the family (or chat) socket until ctx is
// cancelled or the server closes the connection.
func (a *App) tail(ctx context.Context, familyID, chatID string) error {
	if err := a.login(ctx); err != nil {
		return err
	}

	conn, err := a.api.Subscribe(ctx, familyID, chatID)
	if err != nil {
		if errors.Is(err, client.ErrForbidden) {
			return errors.New("not a member of this family or chat")
		}
		return err
	}
	defer conn.Close()

	room := "family " + familyID
	if chatID != "" {
		room = "chat " + chatID
	}
	fmt.Fprintf(a.out, "Listening on %s (Ctrl+C to stop)\n", room)

	done := make(chan struct{})
	defer close(done)
	go a.keepAlive(conn, done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		if strings.TrimSpace(string(data)) == common.PongFrame {
			continue
		}
		fmt.Fprintln(a.out, FormatEvent(data))
	}
}

// keepAlive sends an application ping at the configured interval. It is the
// only writer of data frames on conn.
func (a *App) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	interval := a.config.PingInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(common.PingFrame)); err != nil {
				return
			}
		}
	}
}
