package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/latoulicious/Serenade/internal/commands"
	"github.com/latoulicious/Serenade/pkg/common"
)

// ParseCommand splits a prefixed message into a lower-cased command token
// and its whitespace-separated arguments. ok is false for anything else.
func ParseCommand(prefix, content string) (token string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// MessageHandler turns guild messages into invocations for the dispatch loop
func (d *Dispatcher) MessageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if inv := d.invocation(m.Message); inv != nil {
		d.Submit(inv)
	}
}

// invocation parses a message. Bots, direct messages, non-commands and
// unknown commands yield nil.
func (d *Dispatcher) invocation(m *discordgo.Message) *commands.Invocation {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return nil
	}

	token, args, ok := ParseCommand(d.env.Prefix, m.Content)
	if !ok {
		return nil
	}
	kind := commands.Lookup(token)
	if kind == commands.KindUnknown {
		return nil
	}

	return &commands.Invocation{
		ID:    uuid.NewString(),
		Kind:  kind,
		Token: token,
		Args:  args,
		Author: common.Requester{
			ID:       m.Author.ID,
			Username: m.Author.Username,
		},
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
}
