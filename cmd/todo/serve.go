package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpserver "swipetodo/internal/mcp"
	"swipetodo/internal/notes"
)

//go:embed static
var staticFS embed.FS

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web screen, the JSON API and the MCP endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, slog.Default())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var portFlag string

func runServer(ctx context.Context, logger *slog.Logger) error {
	port := cfg.HTTP.Port
	if portFlag != "" {
		port = portFlag
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	svc := notes.NewService(store, logger)
	go func() {
		mctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout())
		defer cancel()
		// a failed load leaves an empty list on screen; Mount logs it
		_ = svc.Mount(mctx)
	}()

	mux, err := newMux(svc, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", port)
		logger.Info("endpoints available",
			"web", "http://localhost:"+port,
			"api", "http://localhost:"+port+"/api/notes",
			"mcp", "http://localhost:"+port+"/mcp",
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		if err := svc.Flush(shutdownCtx); err != nil {
			logger.Error("unsaved notes could not be written", "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// newMux wires every HTTP surface onto one router.
func newMux(svc *notes.Service, logger *slog.Logger) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	notes.NewHandler(svc, logger, notes.ViewOptions{
		Theme:    cfg.UI.Theme,
		Markdown: cfg.UI.Markdown,
	}).Register(mux)

	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpserver.NewServer(svc, version))
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux, nil
}
