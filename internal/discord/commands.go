package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/enimaloc/distoornament/pkg/retrylimit"
)

// OverwriteCommands replaces the application's command list, globally or in
// the configured guild, with cmds.
func (b *Bot) OverwriteCommands(ctx context.Context, cmds []*discordgo.ApplicationCommand) error {
	if cmds == nil {
		cmds = []*discordgo.ApplicationCommand{}
	}
	appID, err := b.appID(ctx)
	if err != nil {
		return fmt.Errorf("resolve application id: %w", err)
	}

	scope := b.guildID
	if scope == "" {
		scope = "global"
	}
	hash := hashCommands(cmds)
	if b.cacheDir != "" && loadCommandHash(b.cacheDir, appID, scope) == hash {
		b.logger.Debug().Str("scope", scope).Msg("application commands unchanged, push skipped")
		return nil
	}

	err = retrylimit.WithRetryConfig(ctx, func() error {
		_, err := b.dg.ApplicationCommandBulkOverwrite(appID, b.guildID, cmds, discordgo.WithContext(ctx))
		return err
	}, b.limiter, b.retry)
	if err != nil {
		return fmt.Errorf("overwrite %d commands (%s): %w", len(cmds), scope, err)
	}

	if b.cacheDir != "" {
		if err := saveCommandHash(b.cacheDir, appID, scope, hash); err != nil {
			b.logger.Warn().Err(err).Msg("failed to save command hash")
		}
	}
	return nil
}

// appID is the bot user's ID, which Discord also uses as application ID.
func (b *Bot) appID(ctx context.Context) (string, error) {
	if st := b.dg.State; st != nil {
		st.RLock()
		user := st.User
		st.RUnlock()
		if user != nil && user.ID != "" {
			return user.ID, nil
		}
	}
	user, err := b.dg.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
