package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lentik/internal/dbx"
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
)

// RepositoryManager hands out repositories bound to either the pool or an
// open transaction, so services can compose several writes atomically.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Families(db dbx.DBTX) families.Repository
	Memberships(db dbx.DBTX) memberships.Repository
	Invites(db dbx.DBTX) invites.Repository
	Chats(db dbx.DBTX) chats.Repository
	Messages(db dbx.DBTX) messages.Repository
	Calendar(db dbx.DBTX) calendar.Repository
	Gallery(db dbx.DBTX) gallery.Repository
	Channels(db dbx.DBTX) channels.Repository
	Posts(db dbx.DBTX) posts.Repository
}
