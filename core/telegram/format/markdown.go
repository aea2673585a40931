package format

import (
	"fmt"
	"regexp"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

// Entity types with their own MarkdownV2 escaping rules.
const (
	EntityCode     = "code"
	EntityPre      = "pre"
	EntityTextLink = "text_link"
)

var (
	mdV1Re     = regexp.MustCompile("[_*`\\[]")
	mdV2Re     = regexp.MustCompile(`[_*\[\]()~` + "`" + `>#+\-=|{}.!\\]`)
	mdV2CodeRe = regexp.MustCompile("[`\\\\]")
	mdV2LinkRe = regexp.MustCompile(`[)\\]`)
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2. entityType
// narrows the V2 rules inside code, pre and text_link entities and is ignored
// for V1.
func EscapeMarkdown(text string, version int, entityType string) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$0`), nil
	case MarkdownV2:
		switch entityType {
		case EntityCode, EntityPre:
			return mdV2CodeRe.ReplaceAllString(text, `\$0`), nil
		case EntityTextLink:
			return mdV2LinkRe.ReplaceAllString(text, `\$0`), nil
		}
		return mdV2Re.ReplaceAllString(text, `\$0`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}
