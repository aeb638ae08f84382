package app

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"stockdesk/internal/config"
	"stockdesk/internal/console"
	"stockdesk/internal/notify"
	"stockdesk/internal/remote"
	"stockdesk/internal/session"
	"stockdesk/internal/store"
)

// App wires the client core: remote gateway, store, loader, session and
// notification feed.
type App struct {
	Client  *remote.Client
	Gateway *remote.Gateway
	Store   *store.Store
	Loader  *store.Loader
	Session *session.Coordinator
	Feed    *notify.Feed
	Log     logrus.FieldLogger
}

// New builds an App talking to cfg.APIBaseURL. hc may be nil.
func New(cfg config.Config, hc *http.Client, log logrus.FieldLogger) *App {
	opts := []remote.Option{remote.WithLogger(log.WithField("component", "remote"))}
	if hc != nil {
		opts = append(opts, remote.WithHTTPClient(hc))
	}
	client := remote.NewClient(cfg.APIBaseURL, opts...)
	gw := remote.NewGateway(client)
	feed := notify.NewFeed(cfg.NotificationTTL, log.WithField("component", "notify"))
	st := store.New()
	loader := store.NewLoader(st, gw.Products, gw.Suppliers, gw.Orders, feed, log.WithField("component", "loader"))
	coord := session.NewCoordinator(st, gw, loader, feed, log.WithField("component", "session"))

	return &App{
		Client:  client,
		Gateway: gw,
		Store:   st,
		Loader:  loader,
		Session: coord,
		Feed:    feed,
		Log:     log,
	}
}

// Console builds the console HTTP server over the app.
func (a *App) Console(rateLimit string) (*console.Server, error) {
	return console.NewServer(console.Deps{
		Store:   a.Store,
		Loader:  a.Loader,
		Session: a.Session,
		Feed:    a.Feed,
		Log:     a.Log.WithField("component", "console"),
	}, rateLimit)
}
