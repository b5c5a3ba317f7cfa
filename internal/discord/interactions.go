package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/enimaloc/distoornament/internal/command"
)

const EmbedColor = 0xb01e66

// ErrorEmbed is the embed shown to a user whose command failed.
func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: description, Color: EmbedColor}
}

// ReportError tells the invoking user that the command failed. Text triggers
// get a reply. Interactions get an ephemeral response, or an ephemeral
// followup when the interaction was already acknowledged.
func ReportError(c command.Context, description string) error {
	switch c := c.(type) {
	case *command.TextContext:
		return c.ReplyEmbed(ErrorEmbed(description))
	case *command.InteractionContext:
		embed := ErrorEmbed(description)
		err := c.Session().InteractionRespond(c.Event().Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: []*discordgo.MessageEmbed{embed},
			},
		})
		if err == nil {
			return nil
		}
		_, ferr := c.Session().FollowupMessageCreate(c.Event().Interaction, true, &discordgo.WebhookParams{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		})
		if ferr != nil {
			return errors.Join(err, ferr)
		}
		return nil
	}
	return nil
}

// ErrorHandler logs failed executions and reports them to the invoking user
// with the text message returns for the context.
func ErrorHandler(logger zerolog.Logger, message func(command.Context) string) func(command.Context, error) {
	return func(c command.Context, err error) {
		protocol := "interaction"
		if _, ok := c.(*command.TextContext); ok {
			protocol = "text"
		}
		ev := logger.Error().Err(err).
			Str("protocol", protocol).
			Str("trigger", c.CommandName()).
			Str("command", c.Command().Name())
		if author := c.Author(); author != nil {
			ev = ev.Str("user_id", author.ID)
		}
		ev.Msg("command execution failed")

		if rerr := ReportError(c, message(c)); rerr != nil {
			logger.Warn().Err(rerr).Str("command", c.Command().Name()).Msg("failed to report command error")
		}
	}
}
