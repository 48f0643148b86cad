package main

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hasibdev/portfeed/feed"
	"github.com/hasibdev/portfeed/imaging"
	"github.com/hasibdev/portfeed/server"
	"github.com/hasibdev/portfeed/server/middlewares"
	"github.com/hasibdev/portfeed/store"
	"github.com/hasibdev/portfeed/utils/dotenv"
	. "github.com/hasibdev/portfeed/utils/flag"
	Logger "github.com/hasibdev/portfeed/utils/log"
)

func main() {
	Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	// Re-init so the log entry picks up the parsed flag values.
	Logger.InitLogger()

	local, err := store.NewLocalStore(DataDir)
	if err != nil {
		Logger.Log.Fatal("cannot open local post store: ", err)
	}

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NopLogger{},
	)

	// Backend selection happens exactly once per session, before anything
	// else touches the stores, and never reverses afterwards.
	ctx := context.Background()
	sel := store.Select(ctx, store.RemoteConfigFromEnv(), local, eventbus)

	// One-time local-to-remote copy, before the live subscription starts so
	// migrated posts don't trigger a re-render storm on this session.
	if err := feed.Migrate(ctx, sel); err != nil {
		Logger.Log.Error("migration did not complete cleanly: ", err)
	}
	if err := sel.StartSubscription(ctx); err != nil {
		Logger.Log.Warn("live updates unavailable for this session: ", err)
	}

	repo := feed.NewRepository(sel, imaging.NewPipeline())
	importExport := feed.NewImportExport(local)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middlewares.RequestLog())

	server.NewHandlers(repo, importExport, eventbus).Register(router)

	Logger.Log.Infof("feed server starts up on backend %q", sel.Backend)
	router.Run(":8080")
}
