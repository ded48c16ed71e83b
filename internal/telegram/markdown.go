package telegram

import (
	"regexp"
	"strings"
)

var (
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*([^*\n]+?)\*`)
	reLink   = regexp.MustCompile(`\[([^\]]+?)\]\(([^)]+?)\)`)
)

// markdownToTelegramHTML converts the reply markdown subset to Telegram HTML:
// **bold** → <b>, *italic* → <i>, [text](url) → <a href>. Everything else is escaped.
func markdownToTelegramHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	text = telegramEscapeHTML(text)
	// Bold must run before italic.
	text = reBold.ReplaceAllString(text, "<b>$1</b>")
	text = reLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = reItalic.ReplaceAllString(text, "<i>$1</i>")
	return text
}

// telegramEscapeHTML escapes characters that are special in HTML.
func telegramEscapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}
