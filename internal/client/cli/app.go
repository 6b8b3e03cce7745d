package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/lentik/internal/client/client"
	"github.com/dmitrijs2005/lentik/internal/client/config"
	"github.com/gorilla/websocket"
)

const usage = `usage: lentik-cli [-s server_url] [-u username] [-p ping_interval] <command>

commands:
  tail <family_id> [chat_id]             print realtime events
  upload <family_id> <file> [caption]    add an image or video to the gallery`

// ErrUsage is returned when the command line names no known command.
var ErrUsage = errors.New(usage)

// API is the part of the server the CLI talks to.
type API interface {
	Login(ctx context.Context, userName, pin string) error
	Subscribe(ctx context.Context, familyID, chatID string) (*websocket.Conn, error)
	AddGalleryItem(ctx context.Context, familyID, mediaType, caption string) (*client.GalleryUpload, error)
	HTTP() *http.Client
}

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.New(c.ServerURL, c.CookieName)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run executes the command named by the positional arguments.
func (a *App) Run(ctx context.Context) error {
	args := a.config.Args
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "tail":
		if len(args) < 2 || len(args) > 3 {
			return ErrUsage
		}
		chatID := ""
		if len(args) == 3 {
			chatID = args[2]
		}
		return a.tail(ctx, args[1], chatID)
	case "upload":
		if len(args) < 3 || len(args) > 4 {
			return ErrUsage
		}
		caption := ""
		if len(args) == 4 {
			caption = args[3]
		}
		return a.upload(ctx, args[1], args[2], caption)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], ErrUsage)
	}
}

// login asks for whatever the config does not provide and logs in.
func (a *App) login(ctx context.Context) error {
	userName := a.config.UserName
	if userName == "" {
		var err error
		if userName, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	pin, err := GetPin(a.out)
	if err != nil {
		return err
	}

	if err := a.api.Login(ctx, userName, pin); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("login failed: wrong username or PIN")
		}
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}
