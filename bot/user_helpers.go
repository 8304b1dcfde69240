package bot

import (
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	if guildID != "" {
		member, err := s.GuildMember(guildID, userID)
		if err == nil && member != nil {
			if member.Nick != "" {
				return member.Nick
			}
			if member.User != nil {
				return displayNameOf(member.User)
			}
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return displayNameOf(user)
	}

	return "Unknown"
}

func displayNameOf(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

var errNoInteractionUser = errors.New("interaction has no user")

// interactionUser returns the invoking user for both guild and DM interactions
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// interactionUserID parses the invoking user's snowflake
func interactionUserID(i *discordgo.InteractionCreate) (int64, *discordgo.User, error) {
	user := interactionUser(i)
	if user == nil {
		return 0, nil, errNoInteractionUser
	}
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, nil, err
	}
	return id, user, nil
}
