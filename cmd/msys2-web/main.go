package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/msys2/msys2-web/pkg/config"
	"github.com/msys2/msys2-web/pkg/fetch"
	"github.com/msys2/msys2-web/pkg/queue"
	"github.com/msys2/msys2-web/pkg/snapshot"
	"github.com/msys2/msys2-web/pkg/source"
	"github.com/msys2/msys2-web/pkg/storage"
	"github.com/msys2/msys2-web/pkg/web"

	_ "github.com/msys2/msys2-web/pkg/storage/bc"
)

func main() {
	cfgPath := flag.String("config", "", "path to a JSON config overriding the defaults")
	flag.Parse()

	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  "msys2-web",
		Level: hclog.LevelFromString(os.Getenv("MSYS2_WEB_LOG_LEVEL")),
	})
	appLogger.Info("msys2-web is initializing")

	cfg := config.NewConfig()
	if *cfgPath != "" {
		if err := cfg.LoadFromFile(*cfgPath); err != nil {
			appLogger.Error("Couldn't load config", "path", *cfgPath, "error", err)
			return
		}
	}

	srv, err := web.New(appLogger)
	if err != nil {
		appLogger.Error("Error initializing webserver", "error", err)
		return
	}

	var store storage.Storage
	if cfg.Storage != "" {
		storage.SetLogger(appLogger)
		storage.DoCallbacks()
		store, err = storage.Initialize(cfg.Storage)
		if err != nil {
			appLogger.Error("Couldn't initialize storage", "error", err)
			return
		}
	}

	fetcher := fetch.NewFetcher(appLogger, store)
	pub := snapshot.NewPublisher(appLogger)
	resolver := queue.NewResolver(appLogger)
	if len(cfg.BaseDepends) > 0 {
		resolver.BaseDepends = cfg.BaseDepends
	}

	refresher := fetch.NewRefresher(appLogger, fetcher, pub,
		cfg.Repos, cfg.SrcInfoURLs,
		cfg.UpdateInterval.Std(),
		cfg.RefreshesPerWindow, cfg.RefreshWindow.Std())

	if len(cfg.RecipeCheckouts) > 0 {
		urls := make([]string, 0, len(cfg.RecipeCheckouts))
		for url := range cfg.RecipeCheckouts {
			urls = append(urls, url)
		}
		sort.Strings(urls)

		checkouts := make(source.Multi, 0, len(urls))
		for _, url := range urls {
			dir := filepath.Join(cfg.CheckoutDir, filepath.Base(url))
			checkouts = append(checkouts,
				source.NewCheckout(appLogger, url, dir, cfg.RecipeCheckouts[url]))
		}
		refresher.SetSrcInfoSource(checkouts)
	}

	ctx, cancel := context.WithCancel(context.Background())

	api := web.NewAPI(appLogger, pub, resolver, refresher)
	srv.Mount("/api", api.HTTPEntry())

	go refresher.Run(ctx)
	go srv.Serve(cfg.Bind)

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, os.Interrupt)

	<-stop

	appLogger.Info("Shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	if store != nil {
		store.Close()
	}
	appLogger.Info("Goodbye!")
}
