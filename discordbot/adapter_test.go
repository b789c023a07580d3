package discordbot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestToMessage(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &discordgo.Message{
		ID:        "msg-1",
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Content:   "Friday raid",
		Timestamp: ts,
		Author: &discordgo.User{
			ID:       "user-1",
			Username: "alice",
			Bot:      false,
		},
		Attachments: []*discordgo.MessageAttachment{{
			URL:         "https://cdn.discordapp.com/a/clip.mp4",
			Filename:    "clip.mp4",
			ContentType: "video/mp4",
		}},
	}
	msg := toMessage(in)
	if msg.ID != "msg-1" || msg.GuildID != "guild-1" || msg.ChannelID != "chan-1" {
		t.Fatalf("identity fields lost: %+v", msg)
	}
	if msg.AuthorID != "user-1" || msg.AuthorName != "alice" || msg.FromBot {
		t.Fatalf("author fields lost: %+v", msg)
	}
	if !msg.Timestamp.Equal(ts) {
		t.Fatalf("timestamp = %v, want %v", msg.Timestamp, ts)
	}
	if len(msg.Attachments) != 1 || !msg.Attachments[0].IsVideo() {
		t.Fatalf("attachment lost: %+v", msg.Attachments)
	}
}

func TestToMessageNilAuthor(t *testing.T) {
	msg := toMessage(&discordgo.Message{ID: "msg-2"})
	if msg.AuthorID != "" || msg.FromBot {
		t.Fatalf("nil author should leave author fields zero: %+v", msg)
	}
}
