// Package command defines the unit of bot behavior shared by both trigger
// protocols: free-text prefixed messages and Discord application command
// interactions. A Command is looked up by name or alias in a Registry and
// receives a Context describing where and by whom it was triggered.
package command

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Command is the contract every bot command satisfies. Both execution
// methods must be implemented; a command that does not support one protocol
// simply returns nil (or an error) from it.
type Command interface {
	Name() string
	Aliases() []string
	Description() string

	ExecuteText(ctx context.Context, tc *TextContext) error
	ExecuteInteraction(ctx context.Context, ic *InteractionContext) error

	// Registrable reports whether the command is pushed to the remote
	// application command list. Unregistrable commands are still dispatched.
	Registrable() bool
	// Options describes the command's parameters for remote registration.
	Options() []*discordgo.ApplicationCommandOption
}

// Base supplies the optional parts of Command. Embed it and implement Name,
// ExecuteText and ExecuteInteraction.
type Base struct{}

func (Base) Aliases() []string                              { return nil }
func (Base) Description() string                            { return "" }
func (Base) Registrable() bool                              { return true }
func (Base) Options() []*discordgo.ApplicationCommandOption { return nil }

// Schema builds the registration payload for c.
func Schema(c Command) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        c.Name(),
		Description: c.Description(),
		Options:     c.Options(),
	}
}

// Schemas maps every command to its schema, keeping order.
func Schemas(cmds []Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, Schema(c))
	}
	return out
}
