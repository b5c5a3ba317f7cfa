package command

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Middleware wraps a command. The wrapper keeps the inner command's name,
// aliases and schema.
type Middleware func(Command) Command

// ApplyMiddlewares applies mws in order; the last one is the outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

type wrappedCommand struct {
	Command
	text        func(ctx context.Context, tc *TextContext) error
	interaction func(ctx context.Context, ic *InteractionContext) error
}

func (w *wrappedCommand) ExecuteText(ctx context.Context, tc *TextContext) error {
	if w.text != nil {
		return w.text(ctx, tc)
	}
	return w.Command.ExecuteText(ctx, tc)
}

func (w *wrappedCommand) ExecuteInteraction(ctx context.Context, ic *InteractionContext) error {
	if w.interaction != nil {
		return w.interaction(ctx, ic)
	}
	return w.Command.ExecuteInteraction(ctx, ic)
}

// Unwrap returns the wrapped command.
func (w *wrappedCommand) Unwrap() Command { return w.Command }

// Root strips every middleware layer from c.
func Root(c Command) Command {
	for {
		w, ok := c.(interface{ Unwrap() Command })
		if !ok {
			return c
		}
		c = w.Unwrap()
	}
}

// WithGuildOnly ignores triggers from outside a guild. Interactions get an
// ephemeral notice.
func WithGuildOnly(notice string) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			text: func(ctx context.Context, tc *TextContext) error {
				if tc.Message().GuildID == "" {
					return nil
				}
				return cmd.ExecuteText(ctx, tc)
			},
			interaction: func(ctx context.Context, ic *InteractionContext) error {
				if ic.Event().GuildID == "" {
					return ic.RespondEphemeral(notice)
				}
				return cmd.ExecuteInteraction(ctx, ic)
			},
		}
	}
}

// WithCommandLogger logs every execution of the command with its outcome.
func WithCommandLogger(logger zerolog.Logger) Middleware {
	return func(cmd Command) Command {
		logRun := func(c Context, protocol string, started time.Time, err error) {
			ev := logger.Info()
			if err != nil {
				ev = logger.Warn().Err(err)
			}
			if author := c.Author(); author != nil {
				ev = ev.Str("user_id", author.ID).Str("username", author.Username)
			}
			ev.Str("command", cmd.Name()).
				Str("trigger", c.CommandName()).
				Str("protocol", protocol).
				Dur("took", time.Since(started)).
				Msg("command executed")
		}
		return &wrappedCommand{
			Command: cmd,
			text: func(ctx context.Context, tc *TextContext) error {
				started := time.Now()
				err := cmd.ExecuteText(ctx, tc)
				logRun(tc, "text", started, err)
				return err
			},
			interaction: func(ctx context.Context, ic *InteractionContext) error {
				started := time.Now()
				err := cmd.ExecuteInteraction(ctx, ic)
				logRun(ic, "interaction", started, err)
				return err
			},
		}
	}
}
