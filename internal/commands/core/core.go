// Package core holds the commands every deployment ships: ping, help and the
// info group.
package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/i18n"
)

const (
	CategoryInformation = "🕯️ Information"
	CategoryMaintenance = "🛠️ Maintenance"
)

// Categorized commands are listed under their category by help.
type Categorized interface {
	Category() string
}

// Category returns the category of c, looking through middlewares, or "".
func Category(c command.Command) string {
	if cat, ok := command.Root(c).(Categorized); ok {
		return cat.Category()
	}
	return ""
}

// locale picks the translation for c: the user's client locale for
// interactions, otherwise the guild's preferred locale when the guild is
// cached.
func locale(b *i18n.Bundle, c command.Context) *i18n.Locale {
	if l := c.Locale(); l != "" {
		return b.Lookup(string(l))
	}
	if tc, ok := c.(*command.TextContext); ok && tc.Message().GuildID != "" {
		if s := tc.Session(); s != nil && s.State != nil {
			if g, err := s.State.Guild(tc.Message().GuildID); err == nil {
				return b.Lookup(g.PreferredLocale)
			}
		}
	}
	return b.Default()
}

func embed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: embedColor}
}

const embedColor = 0xb01e66
