// Package server orchestrates all components: COMMS client, targets store, dispatcher, HTTP health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/settings-dispatch/internal/config"
	"github.com/morezero/settings-dispatch/pkg/capability"
	"github.com/morezero/settings-dispatch/pkg/command"
	"github.com/morezero/settings-dispatch/pkg/commsutil"
	"github.com/morezero/settings-dispatch/pkg/db"
	"github.com/morezero/settings-dispatch/pkg/dispatch"
	"github.com/morezero/settings-dispatch/pkg/encode"
	"github.com/morezero/settings-dispatch/pkg/events"
	"github.com/morezero/settings-dispatch/pkg/setting"
)

const logPrefix = "server:server"

// Server is the settings-dispatch orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	store      *setting.Store
	registry   *capability.Registry
}

// describeResponse is the payload returned on the describe subject.
type describeResponse struct {
	Methods []capability.Descriptor `json:"methods"`
	Targets []string                `json:"targets"`
}

// healthOutput is the payload returned by /health.
type healthOutput struct {
	Status    string `json:"status"`
	Targets   int    `json:"targets"`
	Comms     bool   `json:"comms"`
	Timestamp string `json:"timestamp"`
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	// Setup structured logging
	var logLevel slog.Level
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting settings-dispatch", logPrefix))

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}

	// Step 1: Load targets
	store, err := setting.LoadFile(cfg.TargetsFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load targets: %w", logPrefix, err)
	}
	s.store = store
	s.registry = setting.Capabilities()

	// Determine subjects
	dispatchSubject := cfg.DispatchSubject
	if dispatchSubject == "" {
		dispatchSubject = commsutil.SubjectDispatch
	}
	describeSubject := cfg.DescribeSubject
	if describeSubject == "" {
		describeSubject = commsutil.SubjectDescribe
	}
	slog.Info(fmt.Sprintf("%s - Dispatch subject: %s", logPrefix, dispatchSubject))

	// Step 2: Connect to COMMS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
	}
	s.nc = nc

	// Step 3: Connect to the directory database when configured
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			nc.Close()
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		s.pool = pool

		if cfg.RunMigrations {
			migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
			if err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
			}
			if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
			}
			if err := db.SeedFromTargetsFile(ctx, pool, cfg.TargetsFile); err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to seed targets: %w", logPrefix, err)
			}
		}
	}

	// Step 4: Create publisher and dispatcher
	publisherOpts := &events.CommsPublisherOpts{}
	if cfg.ChangeEventSubject != "" {
		publisherOpts.GlobalChangeSubject = cfg.ChangeEventSubject
	}
	publisher := events.NewCommsPublisher(nc, publisherOpts)

	disp := dispatch.NewDispatcher(dispatch.DispatcherParams{
		Registry:  s.registry,
		Resolver:  store,
		Publisher: publisher,
	})

	// Step 5: Subscribe to the dispatch subject (one command per message)
	requestTimeout := cfg.RequestTimeout
	sub, err := nc.Subscribe(dispatchSubject, func(msg *comms.Msg) {
		var cmd command.Command
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode command: %v", logPrefix, err))
			rec := &encode.Record{
				Ok:    false,
				Error: &dispatch.ErrorDetail{Kind: "INVALID_REQUEST", Message: "Failed to decode command"},
			}
			data, _ := json.Marshal(rec)
			msg.Respond(data)
			return
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		res := disp.Dispatch(reqCtx, &cmd)

		rec, err := encode.ToRecord(res)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode result: %v", logPrefix, err))
			return
		}
		data, err := json.Marshal(rec)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		s.close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, dispatchSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, dispatchSubject))

	// Step 5b: Subscribe to the describe subject (self-description)
	describeSub, err := nc.Subscribe(describeSubject, func(msg *comms.Msg) {
		resp := describeResponse{
			Methods: s.registry.Describe(),
			Targets: store.IDs(),
		}
		data, err := json.Marshal(resp)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - describe response encode: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		sub.Unsubscribe()
		s.close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, describeSubject, err)
	}
	defer describeSub.Unsubscribe()
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, describeSubject))

	// Step 6: Start HTTP health server
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h := s.health()
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP health server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Settings-dispatch is ready (%d targets)", logPrefix, store.Len()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	if s.pool != nil {
		s.pool.Close()
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

func (s *Server) health() *healthOutput {
	h := &healthOutput{
		Status:    "healthy",
		Targets:   s.store.Len(),
		Comms:     s.nc != nil && s.nc.IsConnected(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !h.Comms {
		h.Status = "unhealthy"
	}
	return h
}

// homePageTemplate is the HTML for the dispatch home page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Settings Dispatch</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>Settings Dispatch</h1>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Targets loaded: {{.Health.Targets}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Exposed methods</h2>
    <table>
      <thead>
        <tr><th>Method</th><th>Parameters</th><th>Returns</th></tr>
      </thead>
      <tbody>
        {{range .Methods}}
        <tr>
          <td>{{.Name}}</td>
          <td>{{range .Params}}{{.Name}} ({{.Kind}}){{if .Optional}} [optional]{{end}} {{end}}</td>
          <td>{{.Returns}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </section>

  <section>
    <h2>Targets</h2>
    {{if not .Targets}}
    <p>No targets loaded.</p>
    {{else}}
    <table>
      <thead><tr><th>Target</th></tr></thead>
      <tbody>
        {{range .Targets}}<tr><td>{{.}}</td></tr>{{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health  *healthOutput
	Methods []capability.Descriptor
	Targets []string
}

// handleHome returns an HTTP handler for the dispatch home page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		data := homeData{
			Health:  s.health(),
			Methods: s.registry.Describe(),
			Targets: s.store.IDs(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
