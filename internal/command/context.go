package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ErrNoGuild is returned by Context.Guild when the trigger did not come from a guild.
var ErrNoGuild = errors.New("not in a guild")

// Context is what a command sees of the event that triggered it, whatever
// the protocol. Guild may need a REST round trip and is only resolved when
// called; Author and Member may be nil.
type Context interface {
	Command() Command
	CommandName() string
	Guild(ctx context.Context) (*discordgo.Guild, error)
	Author() *discordgo.User
	Member() *discordgo.Member
	Session() *discordgo.Session
	Locale() discordgo.Locale
}

var (
	_ Context = (*TextContext)(nil)
	_ Context = (*InteractionContext)(nil)
)

// resolveGuild reads the guild from the session state, falling back to REST.
func resolveGuild(ctx context.Context, s *discordgo.Session, guildID string) (*discordgo.Guild, error) {
	if guildID == "" {
		return nil, ErrNoGuild
	}
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	g, err := s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	return g, nil
}

// TextContext is built for a prefixed chat message.
type TextContext struct {
	session *discordgo.Session
	event   *discordgo.MessageCreate
	name    string
	args    string
	command Command
}

// NewTextContext builds the context for cmd triggered as name with args.
func NewTextContext(s *discordgo.Session, m *discordgo.MessageCreate, name, args string, cmd Command) *TextContext {
	return &TextContext{session: s, event: m, name: name, args: args, command: cmd}
}

func (c *TextContext) Command() Command            { return c.command }
func (c *TextContext) CommandName() string         { return c.name }
func (c *TextContext) Session() *discordgo.Session { return c.session }

// Arguments is everything after the trigger and its separating space.
func (c *TextContext) Arguments() string { return c.args }

// Fields splits Arguments on white space.
func (c *TextContext) Fields() []string { return strings.Fields(c.args) }

func (c *TextContext) Message() *discordgo.Message { return c.event.Message }

func (c *TextContext) Guild(ctx context.Context) (*discordgo.Guild, error) {
	return resolveGuild(ctx, c.session, c.event.GuildID)
}

// Author is nil for messages without a user author, such as some webhook posts.
func (c *TextContext) Author() *discordgo.User {
	return c.event.Author
}

// Member returns the author's guild member, nil outside guilds. The gateway
// sends a partial member without user; the returned copy fills it in.
func (c *TextContext) Member() *discordgo.Member {
	if c.event.Member == nil {
		return nil
	}
	m := *c.event.Member
	if m.User == nil {
		m.User = c.event.Author
	}
	if m.GuildID == "" {
		m.GuildID = c.event.GuildID
	}
	return &m
}

// Locale is unknown for chat messages.
func (c *TextContext) Locale() discordgo.Locale { return "" }

// Reply answers the triggering message.
func (c *TextContext) Reply(content string) error {
	_, err := c.session.ChannelMessageSendReply(c.event.ChannelID, content, c.event.Reference())
	return err
}

// ReplyEmbed answers the triggering message with an embed.
func (c *TextContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := c.session.ChannelMessageSendEmbedReply(c.event.ChannelID, embed, c.event.Reference())
	return err
}

// InteractionContext is built for an application command interaction.
type InteractionContext struct {
	session *discordgo.Session
	event   *discordgo.InteractionCreate
	name    string
	options []*discordgo.ApplicationCommandInteractionDataOption
	command Command
}

// NewInteractionContext builds the context for cmd. The event must be an
// application command interaction.
func NewInteractionContext(s *discordgo.Session, i *discordgo.InteractionCreate, cmd Command) *InteractionContext {
	data := i.ApplicationCommandData()
	return &InteractionContext{session: s, event: i, name: data.Name, options: data.Options, command: cmd}
}

// descend returns a context for a subcommand selected inside this interaction.
func (c *InteractionContext) descend(child Command, options []*discordgo.ApplicationCommandInteractionDataOption) *InteractionContext {
	return &InteractionContext{session: c.session, event: c.event, name: child.Name(), options: options, command: child}
}

func (c *InteractionContext) Command() Command                    { return c.command }
func (c *InteractionContext) CommandName() string                 { return c.name }
func (c *InteractionContext) Session() *discordgo.Session         { return c.session }
func (c *InteractionContext) Event() *discordgo.InteractionCreate { return c.event }

// Options are the option values at this command's nesting level.
func (c *InteractionContext) Options() []*discordgo.ApplicationCommandInteractionDataOption {
	return c.options
}

// Option returns the named option at this level.
func (c *InteractionContext) Option(name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, o := range c.options {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

func (c *InteractionContext) Guild(ctx context.Context) (*discordgo.Guild, error) {
	return resolveGuild(ctx, c.session, c.event.GuildID)
}

// Author is the invoking user: the member's user in guilds, the user in DMs.
func (c *InteractionContext) Author() *discordgo.User {
	if c.event.Member != nil && c.event.Member.User != nil {
		return c.event.Member.User
	}
	return c.event.User
}

func (c *InteractionContext) Member() *discordgo.Member { return c.event.Member }

func (c *InteractionContext) Locale() discordgo.Locale { return c.event.Locale }

func (c *InteractionContext) respond(data *discordgo.InteractionResponseData) error {
	return c.session.InteractionRespond(c.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// Respond sends a public reply.
func (c *InteractionContext) Respond(content string) error {
	return c.respond(&discordgo.InteractionResponseData{Content: content})
}

// RespondEphemeral sends a reply only the invoking user sees.
func (c *InteractionContext) RespondEphemeral(content string) error {
	return c.respond(&discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral})
}

// RespondEmbed sends a public embed reply.
func (c *InteractionContext) RespondEmbed(embed *discordgo.MessageEmbed) error {
	return c.respond(&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

func (c *InteractionContext) RespondEmbedEphemeral(embed *discordgo.MessageEmbed) error {
	return c.respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// Defer acknowledges the interaction; answer later with Followup.
func (c *InteractionContext) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return c.session.InteractionRespond(c.event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// Followup sends a message after a deferred or completed response.
func (c *InteractionContext) Followup(content string) error {
	_, err := c.session.FollowupMessageCreate(c.event.Interaction, true, &discordgo.WebhookParams{Content: content})
	return err
}
