package message

import (
	"github.com/bwmarrin/discordgo"
)

// FromDiscord adapts a Discord message.
func FromDiscord(m *discordgo.Message) *Received {
	r := Received{
		ID:        m.ID,
		To:        m.ChannelID,
		Guild:     m.GuildID,
		Text:      m.Content,
		Timestamp: m.Timestamp.UnixMilli(),
	}
	if m.Author != nil {
		r.Sender = m.Author.ID
		r.Name = m.Author.Username
		if m.Author.GlobalName != "" {
			r.Name = m.Author.GlobalName
		}
	}
	if m.Member != nil && m.Member.Nick != "" {
		r.Name = m.Member.Nick
	}
	return &r
}

// ToDiscord creates a message to send to Discord. If msg.Reply is not empty,
// then the result is a reply to the message with that ID in msg.To.
// Mentions in the text never ping anyone.
func ToDiscord(msg Sent) *discordgo.MessageSend {
	r := discordgo.MessageSend{
		Content:         msg.Text,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if msg.Reply != "" {
		r.Reference = &discordgo.MessageReference{
			MessageID: msg.Reply,
			ChannelID: msg.To,
		}
	}
	if msg.Embed != nil {
		r.Embeds = []*discordgo.MessageEmbed{msg.Embed.discord()}
	}
	return &r
}

func (e *Embed) discord() *discordgo.MessageEmbed {
	r := discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Author != nil {
		r.Author = &discordgo.MessageEmbedAuthor{
			Name:    e.Author.Name,
			URL:     e.Author.URL,
			IconURL: e.Author.Icon,
		}
	}
	if e.Thumbnail != "" {
		r.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	if len(e.Fields) != 0 {
		r.Fields = make([]*discordgo.MessageEmbedField, len(e.Fields))
		for i, f := range e.Fields {
			r.Fields[i] = &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline}
		}
	}
	return &r
}
