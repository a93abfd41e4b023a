package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fieldLimit is Discord's maximum length of an embed field value.
const fieldLimit = 1024

const queueSize = 16

// Sender is the part of a discordgo session the notifier uses.
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type announcement struct {
	champion string
	skins    []string
	at       time.Time
}

// Discord announces every selected champion and its skins in a channel. Sends
// happen on a background goroutine so a slow Discord never stalls the watcher.
type Discord struct {
	sender    Sender
	channelID string
	queue     chan announcement
}

func NewDiscord(sender Sender, channelID string) *Discord {
	return &Discord{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan announcement, queueSize),
	}
}

// OpenSession connects a bot session with token.
func OpenSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening discord connection: %w", err)
	}
	slog.Info("discord session opened")
	return session, nil
}

// UpdateChampionData queues an announcement, dropping it when the queue is full.
func (d *Discord) UpdateChampionData(display string, skins []string) {
	a := announcement{champion: display, skins: append([]string(nil), skins...), at: time.Now()}
	select {
	case d.queue <- a:
	default:
		slog.Warn("discord queue full, dropping announcement", "champion", display)
	}
}

// Run sends queued announcements until ctx is done.
func (d *Discord) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.queue:
			if _, err := d.sender.ChannelMessageSendEmbed(d.channelID, formatAnnouncement(a)); err != nil {
				slog.Error("error sending champion announcement", "channel", d.channelID, "champion", a.champion, "error", err)
			}
		}
	}
}

func formatAnnouncement(a announcement) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎨 %s locked in", a.champion),
		Color:     0x3498db,
		Timestamp: a.at.Format(time.RFC3339),
		Fields:    []*discordgo.MessageEmbedField{},
	}

	if len(a.skins) == 0 {
		embed.Description = "No skins available 😔"
		return embed
	}

	embed.Description = fmt.Sprintf("%d skins available", len(a.skins))
	for i, chunk := range chunkLines(a.skins, fieldLimit) {
		name := "Skins"
		if i > 0 {
			name = "Skins (continued)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: chunk})
	}
	return embed
}

// chunkLines joins lines with newlines into chunks no longer than limit bytes.
// A single line longer than limit is truncated.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var b strings.Builder
	for _, line := range lines {
		line = "• " + line
		if len(line) > limit {
			line = truncate(line, limit)
		}
		if b.Len() > 0 && b.Len()+1+len(line) > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

func truncate(s string, limit int) string {
	max := limit - len("…")
	cut := 0
	for i := range s {
		if i > max {
			break
		}
		cut = i
	}
	return s[:cut] + "…"
}
