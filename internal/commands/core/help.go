package core

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/config"
	"github.com/enimaloc/distoornament/internal/i18n"
	"github.com/enimaloc/distoornament/internal/version"
)

// HelpCommand lists the commands returned by Commands, or describes one.
type HelpCommand struct {
	command.Base
	Texts    *i18n.Bundle
	Commands func() []command.Command
	// Prefix is shown in the usage footer.
	Prefix string
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"h", "commands"} }
func (c *HelpCommand) Category() string    { return CategoryInformation }
func (c *HelpCommand) Description() string { return c.Texts.Default().Get("help.description") }

func (c *HelpCommand) Options() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "command",
		Description: c.Texts.Default().Get("help.argument"),
	}}
}

func (c *HelpCommand) ExecuteText(_ context.Context, tc *command.TextContext) error {
	var name string
	if fields := tc.Fields(); len(fields) > 0 {
		name = fields[0]
	}
	return tc.ReplyEmbed(c.build(tc, name))
}

func (c *HelpCommand) ExecuteInteraction(_ context.Context, ic *command.InteractionContext) error {
	var name string
	if opt, ok := ic.Option("command"); ok {
		name = opt.StringValue()
	}
	return ic.RespondEmbedEphemeral(c.build(ic, name))
}

func (c *HelpCommand) build(ctx command.Context, name string) *discordgo.MessageEmbed {
	l := locale(c.Texts, ctx)
	title := l.Get("help.title", "app", version.AppName)
	name = strings.TrimSpace(name)
	if name == "" {
		e := embed(title, c.listing(l))
		e.Footer = &discordgo.MessageEmbedFooter{Text: l.Get("help.footer", "prefix", c.Prefix)}
		return e
	}
	for _, cmd := range c.Commands() {
		if cmd.Name() == name || slices.Contains(cmd.Aliases(), name) {
			return embed(title, describe(l, cmd))
		}
	}
	return embed(title, l.Get("help.unknown", "name", name))
}

// listing groups commands by category, lighter categories first, commands
// sorted by name within a category.
func (c *HelpCommand) listing(l *i18n.Locale) string {
	byCategory := make(map[string][]command.Command)
	for _, cmd := range c.Commands() {
		cat := Category(cmd)
		byCategory[cat] = append(byCategory[cat], cmd)
	}
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeight(cats[i]), config.CategoryWeight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for i, cat := range cats {
		if i > 0 {
			sb.WriteString("\n")
		}
		if cat != "" {
			fmt.Fprintf(&sb, "**%s**\n", cat)
		}
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, cmd := range cmds {
			sb.WriteString(describe(l, cmd))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func describe(l *i18n.Locale, cmd command.Command) string {
	line := "`" + cmd.Name() + "`"
	if d := cmd.Description(); d != "" {
		line += " " + d
	}
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		line += " (" + l.Get("help.aliases", "aliases", strings.Join(aliases, ", ")) + ")"
	}
	return line
}
