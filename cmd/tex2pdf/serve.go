package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-tex2pdf/internal/server"
	"github.com/alnah/go-tex2pdf/internal/store"
)

// HTTP server settings.
const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

type serveOptions struct {
	style    styleFlags
	math     mathFlags
	page     pageFlags
	export   exportFlags
	addr     string
	storeDir string
}

func (a *app) serveCmd() *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render and export HTTP API",
		Long: `Serve exposes rendering, export and document storage over HTTP.

  GET    /health
  POST   /api/render?format=html|fragment|json|markdown|docx|term
  POST   /api/export
  GET    /api/documents
  PUT    /api/documents/{key}
  GET    /api/documents/{key}
  DELETE /api/documents/{key}
  GET    /api/documents/{key}/render
  POST   /api/documents/{key}/export

Documents are kept in memory unless --store-dir is set.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			mergeStyleFlags(fs, &o.style, a.cfg)
			mergeMathFlags(fs, &o.math, a.cfg)
			mergePageFlags(fs, &o.page, a.cfg)
			mergeExportFlags(fs, &o.export, a.cfg)
			if fs.Changed("addr") {
				a.cfg.Server.Addr = o.addr
			}
			if fs.Changed("store-dir") {
				a.cfg.Server.StoreDir = o.storeDir
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runServe(cmd.Context())
		},
	}
	fs := cmd.Flags()
	addStyleFlags(fs, &o.style)
	addMathFlags(fs, &o.math)
	addPageFlags(fs, &o.page)
	fs.StringVar(&o.export.mode, "mode", "", "export mode: raster, print")
	fs.Float64Var(&o.export.scale, "scale", 0, "raster device scale factor (0.5-4, default: 2)")
	fs.StringVarP(&o.export.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m)")
	fs.StringVar(&o.addr, "addr", "", "listen address (default "+defaultAddr+")")
	fs.StringVar(&o.storeDir, "store-dir", "", "persist documents in this directory")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	level := slog.LevelInfo
	if a.common.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(a.env.Stderr, &slog.HandlerOptions{Level: level}))

	page, err := pageSettings(a.cfg)
	if err != nil {
		return err
	}
	conv, err := a.newConverter(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	var st store.Store
	if dir := a.cfg.Server.StoreDir; dir != "" {
		fst, err := store.OpenFileStore(dir, store.WithLogger(log))
		if err != nil {
			return err
		}
		st = fst
		log.Info("document store", "dir", fst.Dir())
	}

	addr := a.cfg.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.New(server.Config{Engine: conv, Store: st, Page: page, Logger: log}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting tex2pdf server", "addr", addr, "version", Version)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
