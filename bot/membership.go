package bot

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Membership checks that a user is in the guild and, when roleID is set, holds that role.
type Membership struct {
	s       *discordgo.Session
	guildID string
	roleID  string
}

func NewMembership(s *discordgo.Session, guildID, roleID string) *Membership {
	return &Membership{s: s, guildID: guildID, roleID: roleID}
}

func (m *Membership) IsMember(ctx context.Context, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	member, err := m.s.GuildMember(m.guildID, strconv.FormatInt(userID, 10))
	if err != nil {
		if isUnknownMember(err) {
			return false, nil
		}
		return false, err
	}
	return hasRole(member.Roles, m.roleID), nil
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil &&
		(restErr.Message.Code == discordgo.ErrCodeUnknownMember || restErr.Message.Code == discordgo.ErrCodeUnknownUser)
}

func hasRole(roles []string, roleID string) bool {
	return roleID == "" || slices.Contains(roles, roleID)
}
