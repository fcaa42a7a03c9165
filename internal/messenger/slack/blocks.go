package slack

import (
	"fmt"
	"strings"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/agrotrack/internal/messenger"
)

var levelEmoji = map[messenger.Level]string{ //nolint:gochecknoglobals // lookup table
	messenger.LevelSuccess:  ":white_check_mark:",
	messenger.LevelError:    ":x:",
	messenger.LevelWarning:  ":warning:",
	messenger.LevelInfo:     ":information_source:",
	messenger.LevelQuestion: ":grey_question:",
	messenger.LevelLoading:  ":hourglass_flowing_sand:",
}

// BuildNoticeBlocks builds Slack Block Kit blocks for a notice: a header with
// the title, a section with the body and, when present, a bulleted list of
// field errors.
func BuildNoticeBlocks(n messenger.Notice) []slacklib.Block {
	title := n.Title
	if emoji, ok := levelEmoji[n.Level]; ok {
		title = strings.TrimSpace(emoji + " " + title)
	}

	blocks := []slacklib.Block{
		slacklib.NewHeaderBlock(slacklib.NewTextBlockObject(slacklib.PlainTextType, title, true, false)),
	}

	if n.Body != "" {
		blocks = append(blocks, slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, n.Body, false, false),
			nil,
			nil,
		))
	}

	if len(n.Fields) > 0 {
		blocks = append(blocks, slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, fieldList(n.Fields), false, false),
			nil,
			nil,
		))
	}

	blocks = append(blocks, slacklib.NewContextBlock("",
		slacklib.NewTextBlockObject(slacklib.MarkdownType, fmt.Sprintf("`%s`", n.Level), false, false),
	))

	return blocks
}

// FallbackText is the plain text shown by clients that cannot render blocks.
func FallbackText(n messenger.Notice) string {
	parts := make([]string, 0, 3)
	if n.Title != "" {
		parts = append(parts, n.Title)
	}
	if n.Body != "" {
		parts = append(parts, n.Body)
	}
	if len(n.Fields) > 0 {
		parts = append(parts, fieldList(n.Fields))
	}
	return strings.Join(parts, "\n")
}

func fieldList(fields []messenger.Field) string {
	var sb strings.Builder
	for _, f := range fields {
		for _, msg := range f.Messages {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "• *%s:* %s", f.Name, msg)
		}
	}
	return sb.String()
}
