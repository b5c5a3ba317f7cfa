package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ErrUnknownSubcommand is returned by a Group asked to run a child it does not hold.
var ErrUnknownSubcommand = errors.New("unknown subcommand")

// Subcommand pairs a child command with the option kind it is registered as,
// usually discordgo.ApplicationCommandOptionSubCommand or
// discordgo.ApplicationCommandOptionSubCommandGroup.
type Subcommand struct {
	Kind    discordgo.ApplicationCommandOptionType
	Command Command
}

// Grouped is a command whose options are its subcommands.
type Grouped interface {
	Command
	Subcommands() []Subcommand
}

// SubcommandOptions derives one option per subcommand, in declaration order.
// A child that is itself grouped contributes its own derived options, so
// nesting depth follows the declared tree.
func SubcommandOptions(subs []Subcommand) []*discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subs))
	for _, sub := range subs {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        sub.Kind,
			Name:        sub.Command.Name(),
			Description: sub.Command.Description(),
			Options:     sub.Command.Options(),
		})
	}
	return options
}

// Group is a Grouped command that routes execution to its children.
type Group struct {
	name        string
	description string
	aliases     []string
	subs        []Subcommand
}

// NewGroup creates a group named name holding subs in order.
func NewGroup(name, description string, subs ...Subcommand) *Group {
	return &Group{name: name, description: description, subs: subs}
}

// WithAliases sets the group's aliases and returns the group.
func (g *Group) WithAliases(aliases ...string) *Group {
	g.aliases = aliases
	return g
}

func (g *Group) Name() string              { return g.name }
func (g *Group) Aliases() []string         { return g.aliases }
func (g *Group) Description() string       { return g.description }
func (g *Group) Registrable() bool         { return true }
func (g *Group) Subcommands() []Subcommand { return g.subs }

func (g *Group) Options() []*discordgo.ApplicationCommandOption {
	return SubcommandOptions(g.subs)
}

func (g *Group) child(name string) (Command, bool) {
	for _, sub := range g.subs {
		if sub.Command.Name() == name {
			return sub.Command, true
		}
	}
	return nil, false
}

// ExecuteText runs the child named by the first word of the arguments,
// passing it the rest.
func (g *Group) ExecuteText(ctx context.Context, tc *TextContext) error {
	name, rest, _ := strings.Cut(tc.Arguments(), " ")
	child, ok := g.child(name)
	if !ok {
		return fmt.Errorf("%s %q: %w", g.name, name, ErrUnknownSubcommand)
	}
	return child.ExecuteText(ctx, NewTextContext(tc.Session(), tc.event, name, rest, child))
}

// ExecuteInteraction runs the child named by the interaction's first option.
func (g *Group) ExecuteInteraction(ctx context.Context, ic *InteractionContext) error {
	opts := ic.Options()
	if len(opts) == 0 {
		return fmt.Errorf("%s: no subcommand selected: %w", g.name, ErrUnknownSubcommand)
	}
	selected := opts[0]
	child, ok := g.child(selected.Name)
	if !ok {
		return fmt.Errorf("%s %q: %w", g.name, selected.Name, ErrUnknownSubcommand)
	}
	return child.ExecuteInteraction(ctx, ic.descend(child, selected.Options))
}
