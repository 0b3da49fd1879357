package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/DBravy/connected-chatbot-sub000/app/client/catalog"
	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/server"
	"github.com/DBravy/connected-chatbot-sub000/app/service/conversation"
	"github.com/DBravy/connected-chatbot-sub000/app/service/editor"
	"github.com/DBravy/connected-chatbot-sub000/app/service/planner"
	"github.com/DBravy/connected-chatbot-sub000/app/service/reducer"
	"github.com/DBravy/connected-chatbot-sub000/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, catalog.NewClient)
	do.Provide(di, reducer.New)
	do.Provide(di, planner.New)
	do.Provide(di, editor.New)
	do.Provide(di, conversation.NewMemoryStore)
	do.Provide(di, conversation.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*catalog.Client](di).RunRefreshLoop(appCtx)

	if err = do.MustInvoke[*server.Server](di).Run(appCtx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
