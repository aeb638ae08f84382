package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"stockdesk/internal/app"
	"stockdesk/internal/config"
	"stockdesk/internal/derive"
	"stockdesk/internal/domain"
	"stockdesk/internal/stubapi"
)

const shutdownTimeout = 5 * time.Second

func serveCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "load all collections and serve the console API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Value: cfg.ListenAddr, Destination: &cfg.ListenAddr},
		},
		Action: func(c *cli.Context) error {
			gin.SetMode(gin.ReleaseMode)
			a := app.New(*cfg, nil, logger)
			for col, err := range a.Loader.LoadAll(c.Context) {
				logger.WithField("collection", col).WithError(err).Warn("starting without collection")
			}
			srv, err := a.Console(cfg.RateLimit)
			if err != nil {
				return err
			}
			return listen(c.Context, logger, cfg.ListenAddr, srv.Engine())
		},
	}
}

func mockAPICommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mock-api",
		Usage: "run an in-memory inventory API for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Value: cfg.MockAPIAddr, Destination: &cfg.MockAPIAddr},
		},
		Action: func(c *cli.Context) error {
			gin.SetMode(gin.ReleaseMode)
			srv := stubapi.NewServer(stubapi.NewDocuments(), logger.WithField("component", "mock-api"))
			return listen(c.Context, logger, cfg.MockAPIAddr, srv.Engine())
		},
	}
}

// listen serves h until SIGINT/SIGTERM, then shuts down gracefully.
func listen(ctx context.Context, logger *log.Logger, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.Info("server stopped")
	return nil
}

func listCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "print one collection as a table",
		ArgsUsage: "products|suppliers|orders",
		Action: func(c *cli.Context) error {
			col, ok := domain.ParseCollection(c.Args().First())
			if !ok {
				return errors.Errorf("unknown collection %q, expected products, suppliers or orders", c.Args().First())
			}
			a := app.New(*cfg, nil, logger)
			// orders need the other two collections to resolve names
			if failed := a.Loader.LoadAll(c.Context); failed[col] != nil {
				return failed[col]
			}
			return printTable(c.App.Writer, a, col)
		},
	}
}

func printTable(out io.Writer, a *app.App, col domain.Collection) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	switch col {
	case domain.Products:
		rows := derive.ProductRows(a.Store.Products())
		fmt.Fprintln(w, "SKU\tNAME\tPRICE\tSTOCK\tSTATUS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.SKU, r.Name, r.Price, r.Stock, r.Status)
		}
		if len(rows) == 0 {
			fmt.Fprintln(w, derive.EmptyMessage(col))
		}
	case domain.Suppliers:
		rows := derive.SupplierRows(a.Store.Suppliers())
		fmt.Fprintln(w, "NAME\tCONTACT\tSTATUS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Contact, r.Status)
		}
		if len(rows) == 0 {
			fmt.Fprintln(w, derive.EmptyMessage(col))
		}
	case domain.Orders:
		rows := derive.OrderRows(a.Store, a.Store.Orders())
		fmt.Fprintln(w, "ORDER\tSUPPLIER\tITEMS\tTOTAL\tSTATUS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ShortID, r.Supplier, r.Items, r.Total, r.Status)
		}
		if len(rows) == 0 {
			fmt.Fprintln(w, derive.EmptyMessage(col))
		}
	}
	return w.Flush()
}

func dumpCommand(cfg *config.Config, logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "load every collection and dump it with reference resolution, for debugging",
		Action: func(c *cli.Context) error {
			a := app.New(*cfg, nil, logger)
			failed := a.Loader.LoadAll(c.Context)
			dump(c.App.Writer, a, failed)
			return nil
		},
	}
}

func dump(out io.Writer, a *app.App, failed map[domain.Collection]error) {
	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, SortKeys: true}
	for col, err := range failed {
		fmt.Fprintf(out, "!! %s: %v\n", col, err)
	}
	fmt.Fprintln(out, "=== products")
	cfg.Fdump(out, a.Store.Products())
	fmt.Fprintln(out, "=== suppliers")
	cfg.Fdump(out, a.Store.Suppliers())
	fmt.Fprintln(out, "=== orders")
	for i, o := range a.Store.Orders() {
		fmt.Fprintf(out, "--- order %d %s\n", i, derive.ShortID(o.ID))
		cfg.Fdump(out, o)
		sp, ok := derive.ResolveSupplier(a.Store, o)
		fmt.Fprintf(out, "supplier %q resolved=%t name=%q\n", o.SupplierID, ok, sp.Name)
		for j, it := range o.Items {
			p, ok := derive.ResolveProduct(a.Store, it)
			fmt.Fprintf(out, "item %d product %q resolved=%t name=%q\n", j, it.ProductID, ok, p.Name)
		}
	}
}
