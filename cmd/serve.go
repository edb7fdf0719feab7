/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/backlog/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backlog as a JSON API for browser boards",
	Long: `Start an HTTP server exposing tasks, sequences, documents and decisions
as JSON. Listings include task copies from remote branches.

Endpoints:
  GET   /api/info
  GET   /api/tasks               ?status=&assignee=&label=&priority=&parent=
  POST  /api/tasks
  GET   /api/tasks/{id}
  PATCH /api/tasks/{id}
  POST  /api/tasks/{id}/archive
  POST  /api/tasks/{id}/complete
  GET   /api/sequences           ?all=true
  GET   /api/docs, /api/docs/{id}
  GET   /api/decisions, /api/decisions/{id}

Examples:
  backlog serve                      # http://localhost:6420
  backlog serve --port 8080
  backlog serve --origin http://localhost:5173`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", server.DefaultPort, "API server port")
	serveCmd.Flags().String("host", "localhost", "interface to listen on")
	serveCmd.Flags().StringSlice("origin", nil, "extra browser origins allowed by CORS")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")
	origins, _ := cmd.Flags().GetStringSlice("origin")

	srv := server.New(p.tasks, p.store, server.Options{
		Host:    host,
		Port:    port,
		Origins: origins,
		Info:    server.Info{ProjectName: p.cfg.ProjectName, Version: GetVersion()},
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🌐 Backlog API for %q on http://%s\n", p.cfg.ProjectName, srv.Addr())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")
	case serveErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Server shutdown error: %v\n", err)
	}
	wg.Wait()
	return serveErr
}
