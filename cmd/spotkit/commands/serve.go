package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/haivivi/spotkit/pkg/kws"
)

var serveFlags struct {
	addr    string
	profile string
	model   string
	labels  []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the spotter over WebSocket",
	Long: `Serve the spotter over WebSocket.

Clients connect to /v1/spot and send binary messages of little-endian
16-bit mono 16kHz PCM; the server replies with one JSON event per
trigger. With ?all=1 every recognizer decision is reported. A text
message {"op":"reset"} rewinds the session to the initial stream state.

Each connection runs its own pipeline instance; the model is loaded
once per connection.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := resolveServeSettings()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/spot", func(w http.ResponseWriter, r *http.Request) {
		serveSpotSession(w, r, settings)
	})

	srv := &http.Server{
		Addr:              serveFlags.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("spot server listening", "addr", serveFlags.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func resolveServeSettings() (*spotSettings, error) {
	var settings *spotSettings

	if serveFlags.profile != "" || serveFlags.model == "" {
		cfg, err := getConfig()
		if err != nil {
			return nil, err
		}
		p, err := cfg.ResolveProfile(serveFlags.profile)
		if err != nil {
			return nil, fmt.Errorf("no model: %w (set --model or add a profile)", err)
		}
		if settings, err = settingsFromProfile(p); err != nil {
			return nil, err
		}
	} else {
		settings = &spotSettings{}
	}

	if serveFlags.model != "" {
		settings.Model = serveFlags.model
	}
	if len(serveFlags.labels) > 0 {
		settings.Labels = serveFlags.labels
	}
	if settings.Model == "" || len(settings.Labels) == 0 {
		return nil, fmt.Errorf("no model configured (set --model and --labels or add a profile)")
	}
	return settings, nil
}

var spotUpgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 1024,
	// The spotter holds no per-user state or credentials; any origin may
	// stream audio at it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type sessionCommand struct {
	Op string `json:"op"`
}

// serveSpotSession runs one WebSocket session: a dedicated pipeline fed by
// binary PCM frames, with detection events written back as JSON.
func serveSpotSession(w http.ResponseWriter, r *http.Request, settings *spotSettings) {
	conn, err := spotUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	all := r.URL.Query().Get("all") == "1"
	logger := slog.Default().With("session", session)

	// Events are emitted synchronously from inside Write, so the sink runs
	// on the read-loop goroutine and may use the connection directly.
	var sinkErr error
	sink := func(res kws.Result) {
		if !res.IsNew && !all {
			return
		}
		if err := conn.WriteJSON(eventFromResult(res)); err != nil && sinkErr == nil {
			sinkErr = err
		}
	}

	sp, err := newSpotter(settings, sink)
	if err != nil {
		logger.Error("pipeline setup failed", "error", err)
		conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer sp.Close()

	logger.Info("session started", "remote", r.RemoteAddr)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, context.Canceled) {
				logger.Warn("session read failed", "error", err)
			}
			break
		}

		switch msgType {
		case websocket.BinaryMessage:
			if _, err := sp.Pipe.Write(data); err != nil {
				logger.Warn("pipeline write failed", "error", err)
			}
			if sinkErr != nil {
				logger.Warn("session event write failed", "error", sinkErr)
				return
			}
		case websocket.TextMessage:
			var c sessionCommand
			if err := json.Unmarshal(data, &c); err == nil && c.Op == "reset" {
				sp.Pipe.Reset()
			}
		}
	}
	logger.Info("session ended", "audio", sp.Pipe.Pos().String())
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8090", "listen address")
	serveCmd.Flags().StringVarP(&serveFlags.profile, "profile", "p", "", "profile name (default: current profile)")
	serveCmd.Flags().StringVar(&serveFlags.model, "model", "", "model path, overrides the profile")
	serveCmd.Flags().StringSliceVar(&serveFlags.labels, "labels", nil, "category labels, overrides the profile")

	rootCmd.AddCommand(serveCmd)
}
