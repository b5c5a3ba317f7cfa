// Package discord adapts a discordgo session to the router: event
// subscriptions, the application command push and the session lifecycle.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/enimaloc/distoornament/pkg/retrylimit"
)

// Intents needed for prefixed messages in guilds and DMs. MessageContent is
// privileged and must be enabled for the application.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Bot owns a discordgo session on behalf of the router.
type Bot struct {
	dg       *discordgo.Session
	logger   zerolog.Logger
	guildID  string
	cacheDir string
	limiter  *retrylimit.AdaptiveLimiter
	retry    retrylimit.RetryConfig
}

type Option func(*Bot)

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
		b.retry.Logger = logger
	}
}

// WithGuild registers application commands in one guild instead of
// globally. Guild commands update immediately, which suits development.
func WithGuild(guildID string) Option {
	return func(b *Bot) { b.guildID = guildID }
}

// WithHashCache skips the command push when the list is unchanged since the
// last successful push, as recorded in dir.
func WithHashCache(dir string) Option {
	return func(b *Bot) { b.cacheDir = dir }
}

func WithRetry(cfg retrylimit.RetryConfig) Option {
	return func(b *Bot) {
		cfg.Logger = b.logger
		b.retry = cfg
	}
}

// NewSession creates a session for a bot token with the intents the router needs.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	return dg, nil
}

// New wraps dg. Lifecycle events are logged from here on.
func New(dg *discordgo.Session, opts ...Option) *Bot {
	b := &Bot{
		dg:      dg,
		logger:  zerolog.Nop(),
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry:   retrylimit.DefaultRetryConfig(),
	}
	b.retry.MaxAttempts = 5
	for _, opt := range opts {
		opt(b)
	}
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	return b
}

// Session returns the wrapped session.
func (b *Bot) Session() *discordgo.Session { return b.dg }

func (b *Bot) AddMessageHandler(fn func(*discordgo.Session, *discordgo.MessageCreate)) func() {
	return b.dg.AddHandler(fn)
}

func (b *Bot) AddInteractionHandler(fn func(*discordgo.Session, *discordgo.InteractionCreate)) func() {
	return b.dg.AddHandler(fn)
}

// Run opens the gateway connection and holds it until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	<-ctx.Done()
	b.logger.Info().Msg("shutdown signal received, closing gateway")
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close Discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	ev := b.logger.Info().Int("guilds", len(r.Guilds))
	if r.User != nil {
		ev = ev.Str("user", r.User.Username).Str("user_id", r.User.ID)
	}
	ev.Msg("Discord bot is running")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil {
		return
	}
	b.logger.Debug().Str("guild_id", g.ID).Str("guild", g.Name).Msg("guild available")
}
