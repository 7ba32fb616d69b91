package notion

import (
	"strings"

	"memo-notion-api/src/domain"
)

// titleMaxRunes is the number of leading characters of the content that
// become the page title. The title is a lossy derivation; the full
// content always lives in the page's first paragraph block.
const titleMaxRunes = 100

// TitleProperty builds the title property holding the first 100
// characters of content
func TitleProperty(content string) Property {
	return Property{
		Title: []RichText{
			{
				Type: "text",
				Text: &TextBody{Content: truncateRunes(content, titleMaxRunes)},
			},
		},
	}
}

// TagsProperty builds the multi-select property. Tag names are passed
// through verbatim; the service registers unknown names as new options.
// A nil or empty slice encodes as an empty option list, which replaces
// any existing tags wholesale.
func TagsProperty(tags []string) Property {
	options := make([]Option, 0, len(tags))
	for _, tag := range tags {
		options = append(options, Option{Name: tag})
	}
	return Property{MultiSelect: options}
}

// ContentBlock builds the single paragraph block carrying the full,
// untruncated content
func ContentBlock(content string) Block {
	return Block{
		Object: "block",
		Type:   "paragraph",
		Paragraph: &Paragraph{
			RichText: []RichText{
				{
					Type: "text",
					Text: &TextBody{Content: content},
				},
			},
		},
	}
}

// EncodeProperties builds the full property map for a page create
func EncodeProperties(content string, tags []string, contentProp, tagProp string) map[string]Property {
	return map[string]Property{
		contentProp: TitleProperty(content),
		tagProp:     TagsProperty(tags),
	}
}

// DecodeRecord maps a page and its child blocks onto a MemoRecord.
// The first paragraph block is the authoritative content; the truncated
// title property is only a fallback when no block is available. Absent
// or wrong-shaped properties yield zero values, never an error.
func DecodeRecord(page Page, blocks []Block, contentProp, tagProp string) domain.MemoRecord {
	record := domain.MemoRecord{
		ID:        page.ID,
		Tags:      []string{},
		CreatedAt: page.CreatedTime,
		UpdatedAt: page.LastEditedTime,
	}

	if prop, ok := page.Properties[contentProp]; ok {
		record.Content = plainText(prop.Title)
	}

	if prop, ok := page.Properties[tagProp]; ok {
		for _, option := range prop.MultiSelect {
			record.Tags = append(record.Tags, option.Name)
		}
	}

	if body, ok := firstParagraphText(blocks); ok {
		record.Content = body
	}

	return record
}

// plainText concatenates the text runs of a rich text array
func plainText(runs []RichText) string {
	var b strings.Builder
	for _, run := range runs {
		switch {
		case run.PlainText != "":
			b.WriteString(run.PlainText)
		case run.Text != nil:
			b.WriteString(run.Text.Content)
		}
	}
	return b.String()
}

func firstParagraphText(blocks []Block) (string, bool) {
	for _, block := range blocks {
		if block.Type == "paragraph" && block.Paragraph != nil {
			return plainText(block.Paragraph.RichText), true
		}
	}
	return "", false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
