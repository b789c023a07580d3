package discordbot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/activitybank/archiver/archive"
)

// Adapter implements the core's platform collaborator interfaces
// (archive.History, archive.Notifier, archive.OwnerResolver) on a discordgo
// session.
type Adapter struct {
	S *discordgo.Session
}

// FetchPage returns up to limit messages from channelID, newest-first,
// strictly older than beforeID when set.
func (a *Adapter) FetchPage(ctx context.Context, channelID string, limit int, beforeID string) ([]archive.Message, error) {
	msgs, err := a.S.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]archive.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out, nil
}

// Reply posts a text reply referencing messageID.
func (a *Adapter) Reply(ctx context.Context, channelID, messageID, text string) error {
	_, err := a.S.ChannelMessageSendReply(channelID, text, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}, discordgo.WithContext(ctx))
	return err
}

// Say posts a plain channel message.
func (a *Adapter) Say(ctx context.Context, channelID, text string) error {
	_, err := a.S.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

// React adds an emoji reaction to messageID.
func (a *Adapter) React(ctx context.Context, channelID, messageID, emoji string) error {
	return a.S.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

// Owner resolves the guild owner, preferring the state cache over a REST call.
func (a *Adapter) Owner(ctx context.Context, guildID string) (string, error) {
	if g, err := a.S.State.Guild(guildID); err == nil && g.OwnerID != "" {
		return g.OwnerID, nil
	}
	g, err := a.S.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return g.OwnerID, nil
}

// GuildName resolves a guild's display name for the server row.
func (a *Adapter) GuildName(ctx context.Context, guildID string) string {
	if g, err := a.S.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	if g, err := a.S.Guild(guildID, discordgo.WithContext(ctx)); err == nil {
		return g.Name
	}
	return ""
}

// toMessage converts a discordgo message to the platform-neutral core view.
func toMessage(m *discordgo.Message) archive.Message {
	msg := archive.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorTag = m.Author.String()
		msg.AuthorName = m.Author.Username
		msg.FromBot = m.Author.Bot
	}
	for _, att := range m.Attachments {
		msg.Attachments = append(msg.Attachments, archive.Attachment{
			URL:         att.URL,
			Filename:    att.Filename,
			ContentType: att.ContentType,
		})
	}
	return msg
}
