package slack

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/slack-go/slack"
)

const (
	// Slack rejects header text over 150 characters and section text over 3000
	maxHeaderChars  = 150
	maxSectionChars = 3000

	testMessageText = "🎉 VA Tracker connected! You'll receive notifications here when your VAs flag priority contacts or join your team."
)

// truncateRunes shortens s to at most n runes, marking the cut with an ellipsis
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, truncateRunes(text, maxSectionChars), false, false)
}

func contactFlaggedBlocks(alert ContactAlert) []slack.Block {
	priority := types.Priority(alert.Priority).Normalize()
	vaName := alert.VAName
	if vaName == "" {
		vaName = "VA"
	}

	header := fmt.Sprintf("%s %s Priority Contact Flagged", priority.Emoji(), strings.ToUpper(priority.String()))

	button := slack.NewButtonBlockElement("view_linkedin", "",
		slack.NewTextBlockObject(slack.PlainTextType, "View LinkedIn Profile", false, false))
	button.URL = alert.LinkedInURL
	button.Style = slack.StylePrimary

	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncateRunes(header, maxHeaderChars), false, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn("*Contact:*\n" + alert.ContactName),
			mrkdwn("*Flagged by:*\n" + vaName),
		}, nil),
		slack.NewSectionBlock(mrkdwn(fmt.Sprintf("*LinkedIn:*\n<%s|View Profile>", alert.LinkedInURL)), nil, nil),
		slack.NewSectionBlock(mrkdwn("*Context & Notes:*\n"+alert.Notes), nil, nil),
		slack.NewSectionBlock(mrkdwn(fmt.Sprintf("*Screenshots:* %d attached", alert.ImageCount)), nil, nil),
		slack.NewActionBlock("contact_actions", button),
	}
}

func vaJoinedBlocks(vaName, vaEmail string) []slack.Block {
	header := fmt.Sprintf("🎉 %s joined your team", vaName)
	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncateRunes(header, maxHeaderChars), false, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn("*Name:*\n" + vaName),
			mrkdwn("*Email:*\n" + vaEmail),
		}, nil),
	}
}
