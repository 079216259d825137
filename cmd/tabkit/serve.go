package main

import (
	"context"
	"errors"
	"flag"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gabrielmiguelok/tabkit/client"
	"github.com/gabrielmiguelok/tabkit/internal/config"
	"github.com/gabrielmiguelok/tabkit/pkg/core"
	"github.com/gabrielmiguelok/tabkit/pkg/health"
	"github.com/gabrielmiguelok/tabkit/pkg/live"
	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/metrics"
	"github.com/gabrielmiguelok/tabkit/pkg/shutdown"
	"github.com/gabrielmiguelok/tabkit/pkg/state"
	"github.com/gabrielmiguelok/tabkit/pkg/transport"
)

const (
	livePath    = "/live"
	assetsPath  = "/assets/"
	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@3.4.1/dist/css/bootstrap.min.css">
</head>
<body>
<main class="container">
<div class="btn-group" role="group">
<button type="button" class="btn btn-default" data-tabkit-event="prev">Previous</button>
<button type="button" class="btn btn-default" data-tabkit-event="next">Next</button>
</div>
<div id="{{.ContainerID}}" data-live-url="{{.LiveURL}}">{{.Panel}}</div>
</main>
<script src="{{.ScriptURL}}"></script>
</body>
</html>
`))

type pageData struct {
	Title       string
	ContainerID string
	LiveURL     string
	ScriptURL   string
	Panel       template.HTML
}

// server holds everything serve wires together.
type server struct {
	handler http.Handler
	store   *state.MemoryStore
}

func newServer(c config.Config, logger logging.Logger) (*server, error) {
	panel, err := newPanel(c, logger)
	if err != nil {
		return nil, err
	}
	initial := c.Tabbable()

	store := state.NewMemoryStore(time.Minute)
	sessions := state.NewSessions(store, state.WithTTL(c.Server.SessionTTL))

	checker := health.NewChecker(version)
	checker.AddCriticalCheck("sessions", health.StoreCheck(store), time.Second)
	checker.AddCheck("panel", health.PanelCheck(panel, initial), time.Second)

	m := metrics.NewMetrics("tabkit")
	wsConfig := c.Transport()
	wsConfig.Metrics = m
	ws := transport.NewHandler(func() core.Component {
		return live.NewTabsView(panel, sessions, initial, logger)
	}, wsConfig, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		markup, err := panel.Render(initial)
		if err != nil {
			logging.L(r.Context()).Error("panel render failed", logging.Err(err))
			http.Error(w, "panel render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = pageTemplate.Execute(w, pageData{
			Title:       "tabkit",
			ContainerID: live.ContainerID,
			LiveURL:     livePath,
			ScriptURL:   assetsPath + client.ScriptName,
			Panel:       template.HTML(markup),
		})
		if err != nil {
			logging.L(r.Context()).Warn("page write failed", logging.Err(err))
		}
	})
	mux.Handle(livePath, ws)
	mux.Handle("GET "+assetsPath, http.StripPrefix(assetsPath, client.Handler()))
	mux.Handle("GET "+healthPath, checker.Handler())
	mux.Handle("GET "+metricsPath, m.Handler())

	return &server{
		handler: logging.RequestLogger(logger)(mux),
		store:   store,
	}, nil
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "panel file (yaml, json or toml)")
	addr := fs.String("addr", "", "listen address (overrides server.address)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := config.Load(*file)
	if err != nil {
		return err
	}
	if *addr != "" {
		c.Server.Address = *addr
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logger, err := c.Logger(stderr)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	srv, err := newServer(c, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", c.Server.Address)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	sh := shutdown.NewHandler(shutdown.DefaultConfig(), logger)
	sh.Register("http", shutdown.PriorityHTTP, httpServer.Shutdown)
	sh.RegisterCloser("sessions", shutdown.PriorityStore, srv.store)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("tabkit listening", logging.String("addr", ln.Addr().String()))
		serveErr <- httpServer.Serve(ln)
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failure error
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				failure = err
				cancel()
			}
		case <-sh.Done():
		}
	}()

	err = sh.Wait(waitCtx)
	<-watched
	return errors.Join(failure, err)
}
