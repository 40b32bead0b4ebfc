package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/theConCreator/OnyxShopbot/access"
	"github.com/theConCreator/OnyxShopbot/bot"
	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/config"
	"github.com/theConCreator/OnyxShopbot/db"
	"github.com/theConCreator/OnyxShopbot/handler"
	"github.com/theConCreator/OnyxShopbot/health"
	"github.com/theConCreator/OnyxShopbot/logging"
	"github.com/theConCreator/OnyxShopbot/metrics"
	"github.com/theConCreator/OnyxShopbot/model"
	"github.com/theConCreator/OnyxShopbot/moderation"
	"github.com/theConCreator/OnyxShopbot/normalize"
	"github.com/theConCreator/OnyxShopbot/pipeline"
	"github.com/theConCreator/OnyxShopbot/policy"
)

func main() {
	app := cli.App{
		Name:  "onyxshopbot",
		Usage: "classified ad moderation bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: run,
	}
	app.Commands = []*cli.Command{
		{
			Name:  "check-config",
			Usage: "load and validate the config, then exit",
			Action: func(cctx *cli.Context) error {
				cfg, err := config.Load(cctx.String("config"))
				if err != nil {
					return err
				}
				if _, err := buildEngine(cfg.Policy); err != nil {
					return err
				}
				fmt.Fprintln(cctx.App.Writer, "config ok")
				return nil
			},
		},
	}
	app.RunAndExitOnError()
}

func run(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(log)

	b, err := bot.New(cfg.Bot.Token, cfg.Bot.GuildID, log)
	if err != nil {
		return err
	}
	if cfg.Channels.Log != "" {
		ch := logging.NewChannelHandler(log.Handler(), logging.ParseLevel(cfg.Log.ChannelLevel), bot.LogSender(b.Session, cfg.Channels.Log))
		defer ch.Close()
		log = slog.New(ch)
		slog.SetDefault(log)
	}

	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	var membership access.MembershipChecker
	if cfg.Access.CheckMembership {
		membership = bot.NewMembership(b.Session, cfg.Bot.GuildID, cfg.Access.RequiredRoleID)
	}
	transport, err := bot.NewTransport(b.Session, cfg.Channels, log)
	if err != nil {
		return err
	}
	router, err := buildRouter(cfg, store, membership, transport, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hs := health.New(cfg.Health.HTTPAddr, cfg.Health.GRPCAddr, reg, log)
	if err := hs.Start(ctx); err != nil {
		return err
	}

	h := handler.New(router, cfg.Channels, log)
	if err := b.Start(h.OnMessageCreate, h.OnInteractionCreate); err != nil {
		shutdownHealth(hs, log)
		return err
	}
	log.Info("bot is running", "publish", cfg.Channels.Publish, "moderation", cfg.Channels.Moderation)

	<-ctx.Done()
	log.Info("shutting down")

	hs.SetServing(false)
	if err := b.Stop(); err != nil {
		log.Warn("closing discord session", "err", err)
	}
	shutdownHealth(hs, log)
	return nil
}

func shutdownHealth(hs *health.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		log.Warn("stopping health server", "err", err)
	}
}

// openStore picks the access store backend. The returned close func is never nil.
func openStore(cfg model.Database) (access.Store, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return access.NewMemStore(), func() {}, nil
	case "redis":
		store, err := access.NewRedisStore(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, func() { store.Close() }, nil
	}
	conn, err := db.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	store, err := db.NewStore(conn, cfg.Driver)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store, func() { conn.Close() }, nil
}

func buildEngine(cfg model.Policy) (*policy.Engine, error) {
	norm, err := normalize.New(cfg.Transliteration)
	if err != nil {
		return nil, fmt.Errorf("policy.transliteration: %w", err)
	}
	groups := make([]policy.Group, 0, len(cfg.RequiredGroups))
	for _, g := range cfg.RequiredGroups {
		groups = append(groups, policy.Group{Tag: g.Tag, Terms: g.Terms})
	}
	return policy.New(policy.Rules{
		ForbiddenTerms:    cfg.ForbiddenTerms,
		RequiredGroups:    groups,
		MaxLength:         cfg.MaxLength,
		AllowedCharacters: cfg.AllowedCharacters,
		MissingKeyword:    policy.MissingKeywordAction(cfg.MissingKeywordAction),
	}, norm)
}

func buildRouter(cfg *model.Config, store access.Store, membership access.MembershipChecker, transport pipeline.Transport, log *slog.Logger) (*pipeline.Router, error) {
	if store == nil || transport == nil {
		return nil, errors.New("store and transport are required")
	}
	engine, err := buildEngine(cfg.Policy)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Deps{
		Access: access.New(store, membership, access.Options{
			Cooldown:   cfg.Access.Cooldown,
			OperatorID: cfg.Access.OperatorID,
		}),
		Policy: engine,
		Queue:  moderation.NewQueue(),
		Composer: caption.New(caption.Options{
			MaxLength:    cfg.Caption.MaxLength,
			ContactURL:   cfg.Caption.ContactURL,
			ContactLabel: cfg.Caption.ContactLabel,
			PriceMarkers: cfg.Caption.PriceMarkers,
		}),
		Transport:    transport,
		Logger:       log,
		ModeratorIDs: cfg.Moderation.ModeratorIDs,
	}), nil
}
