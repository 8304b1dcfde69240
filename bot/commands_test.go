package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitions(t *testing.T) {
	commands := commandDefinitions()

	names := make([]string, 0, len(commands))
	byName := map[string]*discordgo.ApplicationCommand{}
	for _, cmd := range commands {
		names = append(names, cmd.Name)
		byName[cmd.Name] = cmd
	}
	assert.ElementsMatch(t, []string{"spin", "wheel", "spinstatus", "grantspins"}, names)

	grant := byName["grantspins"]
	require.NotNil(t, grant.DefaultMemberPermissions)
	require.Len(t, grant.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionUser, grant.Options[0].Type)
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, grant.Options[1].Type)
	assert.True(t, grant.Options[1].Required)
	require.NotNil(t, grant.Options[1].MinValue)
	assert.Equal(t, float64(1), *grant.Options[1].MinValue)
}

func TestBotIsAdmin(t *testing.T) {
	b := &Bot{config: Config{AdminIDs: []int64{7, 9}}}
	assert.True(t, b.isAdmin(7))
	assert.True(t, b.isAdmin(9))
	assert.False(t, b.isAdmin(8))
}

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "123", Username: "alice"}},
	}}
	id, user, err := interactionUserID(guild)
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
	assert.Equal(t, "alice", user.Username)

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "456", Username: "bob"},
	}}
	id, _, err = interactionUserID(dm)
	require.NoError(t, err)
	assert.Equal(t, int64(456), id)

	_, _, err = interactionUserID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}})
	assert.Error(t, err)

	bad := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "not-a-number"},
	}}
	_, _, err = interactionUserID(bad)
	assert.Error(t, err)
}
