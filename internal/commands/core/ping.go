package core

import (
	"context"
	"fmt"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/i18n"
)

type PingCommand struct {
	command.Base
	Texts *i18n.Bundle
}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Aliases() []string   { return []string{"p", "latency"} }
func (c *PingCommand) Category() string    { return CategoryMaintenance }
func (c *PingCommand) Description() string { return c.Texts.Default().Get("ping.description") }

func (c *PingCommand) response(ctx command.Context) string {
	latency := ctx.Session().HeartbeatLatency().Milliseconds()
	return locale(c.Texts, ctx).Get("ping.response", "latency", fmt.Sprintf("%dms", latency))
}

func (c *PingCommand) ExecuteText(_ context.Context, tc *command.TextContext) error {
	return tc.Reply(c.response(tc))
}

func (c *PingCommand) ExecuteInteraction(_ context.Context, ic *command.InteractionContext) error {
	return ic.RespondEphemeral(c.response(ic))
}
