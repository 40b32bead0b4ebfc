package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/model"
)

// DecisionPrefix is the component handler key of the moderation buttons.
const DecisionPrefix = "decide"

const (
	colorPublished = 0x2ECC71
	colorPending   = 0xF1C40F
	colorRejected  = 0xE74C3C

	// Discord rejects button labels longer than this.
	maxButtonLabel = 80
	maxMessage     = 2000
)

// DecisionCustomID builds the custom id of a moderation button.
func DecisionCustomID(d model.Decision, ticketID string) string {
	return fmt.Sprintf("%s:%s:%s", DecisionPrefix, d, ticketID)
}

// ParseDecisionCustomID splits a moderation button custom id into the raw decision and
// ticket id. Validation of both is left to the pipeline.
func ParseDecisionCustomID(customID string) (decision, ticketID string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != DecisionPrefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

func buildPublishMessage(sub *model.Submission, c caption.Caption) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Description: c.Text,
		Color:       colorPublished,
	}
	if sub.Kind == model.KindPhoto {
		embed.Image = &discordgo.MessageEmbedImage{URL: sub.MediaRef}
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if c.Contact.URL != "" {
		msg.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: caption.Truncate(c.Contact.Label, maxButtonLabel),
						Style: discordgo.LinkButton,
						URL:   c.Contact.URL,
					},
				},
			},
		}
	}
	return msg
}

func submissionEmbed(sub *model.Submission, title string, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: sub.Body,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Автор", Value: fmt.Sprintf("%s (%s)", mention(sub.Author.UserID), caption.Attribution(sub.Author)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "ID: " + sub.ID},
	}
	if sub.Price != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Цена", Value: sub.Price, Inline: true})
	}
	if sub.Kind == model.KindPhoto {
		embed.Image = &discordgo.MessageEmbedImage{URL: sub.MediaRef}
	}
	return embed
}

func buildModerationMessage(t *model.Ticket) *discordgo.MessageSend {
	embed := submissionEmbed(t.Submission, "Объявление на модерации", colorPending)
	tags := caption.Hashtags(t.Groups)
	if tags == "" {
		tags = "нет"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Теги", Value: tags})
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Тикет: " + t.ID}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Одобрить",
						Style:    discordgo.SuccessButton,
						CustomID: DecisionCustomID(model.DecisionApprove, t.ID),
						Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
					},
					discordgo.Button{
						Label:    "Отклонить",
						Style:    discordgo.DangerButton,
						CustomID: DecisionCustomID(model.DecisionReject, t.ID),
						Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
					},
				},
			},
		},
	}
}

func buildRejectedMessage(sub *model.Submission, reason string) *discordgo.MessageSend {
	embed := submissionEmbed(sub, "Объявление отклонено", colorRejected)
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Причина", Value: reason, Inline: true})
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
}

func buildReply(sub *model.Submission, text string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: caption.Truncate(mention(sub.Author.UserID)+" "+text, maxMessage),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{fmt.Sprint(sub.Author.UserID)},
		},
	}
}

func formatLogLine(text string) string {
	// Reserve room for the code fence.
	return "```\n" + caption.Truncate(text, maxMessage-8) + "\n```"
}
