package discord

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enimaloc/distoornament/internal/command"
	"github.com/enimaloc/distoornament/internal/testhelper"
	"github.com/enimaloc/distoornament/pkg/retrylimit"
)

func schemas() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Type: discordgo.ChatApplicationCommand, Name: "ping", Description: "Latency"},
		{Type: discordgo.ChatApplicationCommand, Name: "info", Description: "About", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "version", Description: "Version"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "uptime", Description: "Uptime"},
		}},
	}
}

func fastRetry() retrylimit.RetryConfig {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func bulkOK(r *http.Request) (int, string) {
	if r.Method == http.MethodPut {
		return http.StatusOK, "[]"
	}
	return http.StatusOK, `{"id":"app1","username":"distoornament"}`
}

func TestNewSession(t *testing.T) {
	dg, err := NewSession("token")
	require.NoError(t, err)
	assert.Equal(t, "Bot token", dg.Token)
	assert.Equal(t, Intents, dg.Identify.Intents)
	assert.NotZero(t, dg.Identify.Intents&discordgo.IntentsMessageContent)
}

func TestOverwriteCommands_Global(t *testing.T) {
	s, rec := testhelper.NewSession(t, "app1")
	rec.Respond = bulkOK
	b := New(s, WithRetry(fastRetry()))

	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), schemas()))

	reqs := rec.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "/applications/app1/commands"), reqs[0].Path)

	var pushed []*discordgo.ApplicationCommand
	reqs[0].Decode(t, &pushed)
	require.Len(t, pushed, 2)
	assert.Equal(t, "ping", pushed[0].Name)
	assert.Equal(t, "info", pushed[1].Name)
	assert.Len(t, pushed[1].Options, 2)
}

func TestOverwriteCommands_GuildAndAppIDLookup(t *testing.T) {
	s, rec := testhelper.NewSession(t, "")
	rec.Respond = bulkOK
	b := New(s, WithGuild("g1"), WithRetry(fastRetry()))

	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), nil))

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	assert.True(t, strings.HasSuffix(reqs[0].Path, "/users/@me"), reqs[0].Path)
	assert.True(t, strings.HasSuffix(reqs[1].Path, "/applications/app1/guilds/g1/commands"), reqs[1].Path)
	assert.JSONEq(t, "[]", string(reqs[1].Body))
}

func TestOverwriteCommands_RetriesServerErrors(t *testing.T) {
	s, rec := testhelper.NewSession(t, "app1")
	calls := 0
	rec.Respond = func(r *http.Request) (int, string) {
		calls++
		if calls == 1 {
			return http.StatusBadGateway, `{"message":"upstream"}`
		}
		return bulkOK(r)
	}
	b := New(s, WithRetry(fastRetry()))

	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), schemas()))
	assert.Equal(t, 2, calls)
}

func TestOverwriteCommands_ClientErrorIsNotRetried(t *testing.T) {
	s, rec := testhelper.NewSession(t, "app1")
	rec.Respond = func(*http.Request) (int, string) {
		return http.StatusBadRequest, `{"message":"Invalid Form Body","code":50035}`
	}
	b := New(s, WithRetry(fastRetry()))

	err := b.OverwriteCommands(testhelper.Context(t), schemas())
	require.Error(t, err)

	var restErr *discordgo.RESTError
	require.True(t, errors.As(err, &restErr))
	assert.Len(t, rec.Requests(), 1)
}

func TestOverwriteCommands_HashCache(t *testing.T) {
	dir := t.TempDir()
	s, rec := testhelper.NewSession(t, "app1")
	rec.Respond = bulkOK
	b := New(s, WithHashCache(dir), WithRetry(fastRetry()))

	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), schemas()))
	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), schemas()))
	assert.Len(t, rec.Requests(), 1, "unchanged list is pushed once")

	_, err := os.Stat(commandHashPath(dir, "app1", "global"))
	require.NoError(t, err)

	changed := schemas()
	changed[0].Description = "Round trip time"
	require.NoError(t, b.OverwriteCommands(testhelper.Context(t), changed))
	assert.Len(t, rec.Requests(), 2)
}

func TestHashCommands(t *testing.T) {
	a := schemas()
	b := schemas()
	b[0], b[1] = b[1], b[0]
	b[0].Options[0], b[0].Options[1] = b[0].Options[1], b[0].Options[0]
	b[0].ID = "123"
	b[0].Version = "9"

	assert.Equal(t, hashCommands(a), hashCommands(b))

	b[1].Description = "changed"
	assert.NotEqual(t, hashCommands(a), hashCommands(b))
}

func TestAddHandlers(t *testing.T) {
	s, _ := testhelper.NewSession(t, "app1")
	b := New(s)

	var got []string
	removeMsg := b.AddMessageHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { got = append(got, m.Content) })
	removeInt := b.AddInteractionHandler(func(*discordgo.Session, *discordgo.InteractionCreate) {})
	assert.NotNil(t, removeMsg)
	assert.NotNil(t, removeInt)
	removeMsg()
	removeInt()
	assert.Empty(t, got)
}

func TestReportError(t *testing.T) {
	cmd := &command.Group{}

	t.Run("text", func(t *testing.T) {
		s, rec := testhelper.NewSession(t, "app1")
		m := &discordgo.MessageCreate{Message: &discordgo.Message{ID: "m1", ChannelID: "c1", GuildID: "g1"}}

		require.NoError(t, ReportError(command.NewTextContext(s, m, "ping", "", cmd), "it broke"))

		last := rec.Last(t)
		assert.True(t, strings.HasSuffix(last.Path, "/channels/c1/messages"), last.Path)
		var body struct {
			Embeds []*discordgo.MessageEmbed `json:"embeds"`
		}
		last.Decode(t, &body)
		require.Len(t, body.Embeds, 1)
		assert.Equal(t, "it broke", body.Embeds[0].Description)
	})

	t.Run("interaction already acknowledged", func(t *testing.T) {
		s, rec := testhelper.NewSession(t, "app1")
		rec.Respond = func(r *http.Request) (int, string) {
			if strings.HasSuffix(r.URL.Path, "/callback") {
				return http.StatusBadRequest, `{"message":"Interaction has already been acknowledged.","code":40060}`
			}
			return http.StatusOK, "{}"
		}
		i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			ID:    "i1",
			AppID: "app1",
			Token: "tok",
			Type:  discordgo.InteractionApplicationCommand,
			Data:  discordgo.ApplicationCommandInteractionData{Name: "ping"},
		}}

		require.NoError(t, ReportError(command.NewInteractionContext(s, i, cmd), "it broke"))

		reqs := rec.Requests()
		require.Len(t, reqs, 2)
		assert.True(t, strings.HasSuffix(reqs[1].Path, "/webhooks/app1/tok"), reqs[1].Path)
		var body struct {
			Flags discordgo.MessageFlags `json:"flags"`
		}
		reqs[1].Decode(t, &body)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, body.Flags)
	})
}
