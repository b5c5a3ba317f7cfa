package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/i18n"
	"github.com/enimaloc/distoornament/internal/version"
)

// InfoGroup is the info command and its version and uptime subcommands.
type InfoGroup struct {
	*command.Group
}

func (g *InfoGroup) Category() string { return CategoryInformation }

// NewInfoGroup builds the info group. started is the process start time
// reported by uptime.
func NewInfoGroup(texts *i18n.Bundle, started time.Time) *InfoGroup {
	def := texts.Default()
	return &InfoGroup{command.NewGroup("info", def.Get("info.description"),
		command.Subcommand{Kind: discordgo.ApplicationCommandOptionSubCommand, Command: &VersionCommand{Texts: texts}},
		command.Subcommand{Kind: discordgo.ApplicationCommandOptionSubCommand, Command: &UptimeCommand{Texts: texts, Started: started, now: time.Now}},
	).WithAliases("about")}
}

type VersionCommand struct {
	command.Base
	Texts *i18n.Bundle
}

func (c *VersionCommand) Name() string        { return "version" }
func (c *VersionCommand) Description() string { return c.Texts.Default().Get("info.version.description") }

func (c *VersionCommand) text(ctx command.Context) string {
	l := locale(c.Texts, ctx)
	if released, ok := version.Released(); ok {
		return l.Get("info.version.built",
			"app", version.AppName,
			"version", version.String(),
			"date", released.Format("2006-01-02"),
			"go", version.GoVersion,
		)
	}
	return l.Get("info.version", "app", version.AppName, "version", version.String())
}

func (c *VersionCommand) ExecuteText(_ context.Context, tc *command.TextContext) error {
	return tc.Reply(c.text(tc))
}

func (c *VersionCommand) ExecuteInteraction(_ context.Context, ic *command.InteractionContext) error {
	return ic.Respond(c.text(ic))
}

type UptimeCommand struct {
	command.Base
	Texts   *i18n.Bundle
	Started time.Time
	now     func() time.Time
}

func (c *UptimeCommand) Name() string        { return "uptime" }
func (c *UptimeCommand) Description() string { return c.Texts.Default().Get("info.uptime.description") }

func (c *UptimeCommand) text(ctx command.Context) string {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return locale(c.Texts, ctx).Get("info.uptime",
		"uptime", formatUptime(now().Sub(c.Started)),
		"since", fmt.Sprintf("<t:%d:f>", c.Started.Unix()),
	)
}

func (c *UptimeCommand) ExecuteText(_ context.Context, tc *command.TextContext) error {
	return tc.Reply(c.text(tc))
}

func (c *UptimeCommand) ExecuteInteraction(_ context.Context, ic *command.InteractionContext) error {
	return ic.Respond(c.text(ic))
}

// formatUptime renders d as days, hours, minutes and seconds, dropping
// leading zero units.
func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days > 0 || h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if days > 0 || h > 0 || m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}
