// Package router turns gateway events into command executions. Text messages
// are matched against a prefix set, interactions by their declared command
// name; both end up in the same Registry and the same Command.
package router

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/enimaloc/distoornament/internal/command"
)

// ErrNoPrefix is returned for an empty entry in the prefix set.
var ErrNoPrefix = errors.New("empty command prefix")

// Gateway is the part of the remote connection the router depends on.
type Gateway interface {
	AddMessageHandler(fn func(*discordgo.Session, *discordgo.MessageCreate)) (remove func())
	AddInteractionHandler(fn func(*discordgo.Session, *discordgo.InteractionCreate)) (remove func())
	// OverwriteCommands replaces the remote application command list.
	OverwriteCommands(ctx context.Context, cmds []*discordgo.ApplicationCommand) error
}

// ErrorHandler receives failed executions.
type ErrorHandler func(c command.Context, err error)

// Handler owns the registry and the two event subscriptions.
type Handler struct {
	ctx      context.Context
	gateway  Gateway
	registry *command.Registry

	prefixes   []string
	pattern    *regexp.Regexp
	mention    bool
	mentionRe  atomic.Pointer[mentionPattern]
	ignoreSelf bool
	register   bool

	logger  zerolog.Logger
	onError ErrorHandler

	wg      conc.WaitGroup
	removes []func()
}

type mentionPattern struct {
	selfID string
	re     *regexp.Regexp
}

// Option configures a Handler.
type Option func(*Handler)

// WithPrefixes sets the ordered prefix set recognised at the start of a message.
func WithPrefixes(prefixes ...string) Option {
	return func(h *Handler) { h.prefixes = prefixes }
}

// WithMentionPrefix also accepts a mention of the bot followed by a space as prefix.
func WithMentionPrefix() Option {
	return func(h *Handler) { h.mention = true }
}

// WithIgnoreSelf drops messages written by the bot itself.
func WithIgnoreSelf() Option {
	return func(h *Handler) { h.ignoreSelf = true }
}

// WithoutRegistration skips pushing the command list to the remote API.
func WithoutRegistration() Option {
	return func(h *Handler) { h.register = false }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func WithErrorHandler(fn ErrorHandler) Option {
	return func(h *Handler) { h.onError = fn }
}

// New subscribes to the gateway's message and interaction streams and, unless
// disabled, starts replacing the remote command list with the registrable
// commands of reg. The replacement is not awaited; its failure is logged and
// does not affect dispatching. Executions use ctx.
func New(ctx context.Context, gw Gateway, reg *command.Registry, opts ...Option) (*Handler, error) {
	h := &Handler{
		ctx:      ctx,
		gateway:  gw,
		registry: reg,
		register: true,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.onError == nil {
		h.onError = h.logError
	}
	for _, p := range h.prefixes {
		if p == "" {
			return nil, ErrNoPrefix
		}
	}
	h.pattern = compilePrefixes(h.prefixes)

	for _, c := range reg.Collisions() {
		h.logger.Warn().
			Str("key", c.Key).
			Str("replaced", c.Loser.Name()).
			Str("by", c.Winner.Name()).
			Msg("command key registered twice, last registration wins")
	}

	h.removes = append(h.removes,
		gw.AddMessageHandler(h.HandleMessage),
		gw.AddInteractionHandler(h.HandleInteraction),
	)

	if h.register {
		h.publish()
	}
	return h, nil
}

// compilePrefixes builds ^(p1|p2|...) from literal prefixes; alternatives
// are tried in order.
func compilePrefixes(prefixes []string) *regexp.Regexp {
	if len(prefixes) == 0 {
		return nil
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^(" + strings.Join(quoted, "|") + ")")
}

func (h *Handler) publish() {
	schemas := command.Schemas(h.registry.Registrable())
	h.wg.Go(func() {
		if err := h.gateway.OverwriteCommands(h.ctx, schemas); err != nil {
			h.logger.Error().Err(err).Int("commands", len(schemas)).Msg("failed to register application commands")
			return
		}
		h.logger.Info().Int("commands", len(schemas)).Msg("application commands registered")
	})
}

func selfID(s *discordgo.Session) string {
	if s == nil || s.State == nil {
		return ""
	}
	s.State.RLock()
	defer s.State.RUnlock()
	if s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}

// prefixPattern returns the pattern to test a message against, including
// the bot mentions when enabled and the bot user is known.
func (h *Handler) prefixPattern(s *discordgo.Session) *regexp.Regexp {
	if !h.mention {
		return h.pattern
	}
	id := selfID(s)
	if id == "" {
		return h.pattern
	}
	if cached := h.mentionRe.Load(); cached != nil && cached.selfID == id {
		return cached.re
	}
	all := append(slices.Clone(h.prefixes), "<@"+id+"> ", "<@!"+id+"> ")
	mp := &mentionPattern{selfID: id, re: compilePrefixes(all)}
	h.mentionRe.Store(mp)
	return mp.re
}

// parse strips the matched prefix and splits the rest at the first space
// into trigger and arguments.
func parse(pattern *regexp.Regexp, content string) (name, args string, ok bool) {
	if pattern == nil {
		return "", "", false
	}
	loc := pattern.FindStringIndex(content)
	if loc == nil {
		return "", "", false
	}
	name, args, _ = strings.Cut(content[loc[1]:], " ")
	return name, args, true
}

// HandleMessage dispatches a chat message. Messages without a known prefix
// and trigger are ignored.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	if h.ignoreSelf && m.Author != nil {
		if id := selfID(s); id != "" && m.Author.ID == id {
			return
		}
	}
	name, args, ok := parse(h.prefixPattern(s), m.Content)
	if !ok {
		return
	}
	cmd, ok := h.registry.Lookup(name)
	if !ok {
		h.logger.Debug().Str("trigger", name).Str("protocol", "text").Msg("unknown command")
		return
	}
	tc := command.NewTextContext(s, m, name, args, cmd)
	h.dispatch(tc, func(ctx context.Context) error { return cmd.ExecuteText(ctx, tc) })
}

// HandleInteraction dispatches an application command interaction. Other
// interaction types and unknown names are ignored.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	cmd, ok := h.registry.Lookup(name)
	if !ok {
		h.logger.Debug().Str("trigger", name).Str("protocol", "interaction").Msg("unknown command")
		return
	}
	ic := command.NewInteractionContext(s, i, cmd)
	h.dispatch(ic, func(ctx context.Context) error { return cmd.ExecuteInteraction(ctx, ic) })
}

// dispatch runs the execution on its own goroutine so a slow command never
// holds up the stream. A panic is reported like a returned error.
func (h *Handler) dispatch(c command.Context, run func(context.Context) error) {
	h.wg.Go(func() {
		var err error
		var pc panics.Catcher
		pc.Try(func() { err = run(h.ctx) })
		if r := pc.Recovered(); r != nil {
			err = fmt.Errorf("command panicked: %w", r.AsError())
		}
		if err != nil {
			h.onError(c, err)
		}
	})
}

func (h *Handler) logError(c command.Context, err error) {
	protocol := "interaction"
	if _, ok := c.(*command.TextContext); ok {
		protocol = "text"
	}
	ev := h.logger.Error().Err(err).
		Str("protocol", protocol).
		Str("trigger", c.CommandName()).
		Str("command", c.Command().Name())
	if author := c.Author(); author != nil {
		ev = ev.Str("user_id", author.ID)
	}
	ev.Msg("command execution failed")
}

// Registry returns the handler's registry.
func (h *Handler) Registry() *command.Registry { return h.registry }

// Wait blocks until in-flight executions and the registration push are done.
func (h *Handler) Wait() { h.wg.Wait() }

// Close removes both subscriptions and waits for in-flight work.
func (h *Handler) Close() {
	for _, remove := range h.removes {
		remove()
	}
	h.removes = nil
	h.Wait()
}
