package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/commands/core"
	"github.com/enimaloc/distoornament/internal/config"
	"github.com/enimaloc/distoornament/internal/discord"
	"github.com/enimaloc/distoornament/internal/i18n"
	"github.com/enimaloc/distoornament/internal/logging"
	"github.com/enimaloc/distoornament/internal/router"
	"github.com/enimaloc/distoornament/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	started := time.Now()

	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info().Msgf("Starting %s (v. %s)", version.AppName, version.String())
	if !dotenv {
		log.Debug().Msg("no .env file found, using the process environment")
	}
	if path := log.Path(); path != "" {
		log.Info().Str("path", path).Msg("file logging enabled")
	}

	texts, err := loadTexts(cfg)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	log.Debug().Int("locales", len(texts.Locales())).Str("default", texts.Default().String()).Msg("locales loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	botOpts := []discord.Option{discord.WithLogger(log.With().Str("component", "discord").Logger())}
	if cfg.CommandsGuildID != "" {
		botOpts = append(botOpts, discord.WithGuild(cfg.CommandsGuildID))
	}
	if !cfg.IsDevelopment() {
		botOpts = append(botOpts, discord.WithHashCache(filepath.Join("data", "commands")))
	}
	bot := discord.New(dg, botOpts...)

	reg, err := buildRegistry(cfg, texts, log.Logger, started)
	if err != nil {
		return err
	}

	routerLog := log.With().Str("component", "router").Logger()
	opts := []router.Option{
		router.WithPrefixes(cfg.Prefixes...),
		router.WithLogger(routerLog),
		router.WithErrorHandler(discord.ErrorHandler(routerLog, func(c command.Context) string {
			return texts.Lookup(string(c.Locale())).Get("command.failed")
		})),
	}
	if cfg.MentionPrefix {
		opts = append(opts, router.WithMentionPrefix())
	}
	if cfg.IgnoreSelf {
		opts = append(opts, router.WithIgnoreSelf())
	}
	if !cfg.RegisterCommands {
		log.Info().Msg("application command registration skipped")
		opts = append(opts, router.WithoutRegistration())
	}

	handler, err := router.New(ctx, bot, reg, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		handler.Close()
		routerLog.Debug().Msg("in-flight commands finished")
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Discord bot error")
		return err
	}
	log.Info().Msg("Discord bot exited cleanly")
	return nil
}

func loadTexts(cfg *config.Config) (*i18n.Bundle, error) {
	if cfg.LocalesDir == "" {
		return i18n.LoadEmbedded(cfg.DefaultLocale)
	}
	info, err := os.Stat(cfg.LocalesDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.LocalesDir)
	}
	return i18n.Load(cfg.DefaultLocale, os.DirFS(cfg.LocalesDir))
}

func buildRegistry(cfg *config.Config, texts *i18n.Bundle, log zerolog.Logger, started time.Time) (*command.Registry, error) {
	mws := []command.Middleware{
		command.WithCommandLogger(log.With().Str("component", "command").Logger()),
	}

	var reg *command.Registry
	prefix := ""
	if len(cfg.Prefixes) > 0 {
		prefix = cfg.Prefixes[0]
	}
	help := &core.HelpCommand{
		Texts:    texts,
		Prefix:   prefix,
		Commands: func() []command.Command { return reg.Commands() },
	}

	cmds := []command.Command{
		&core.PingCommand{Texts: texts},
		help,
		core.NewInfoGroup(texts, started),
	}
	for i, c := range cmds {
		cmds[i] = command.ApplyMiddlewares(c, mws...)
	}

	var err error
	reg, err = command.NewRegistry(cmds...)
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}
	return reg, nil
}
