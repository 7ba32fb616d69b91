package notion

import (
	"encoding/json"
	"time"
)

// RichText is a single text run inside a title property or block.
// PlainText is populated by the service on reads; Text carries the
// content on writes.
type RichText struct {
	Type      string    `json:"type,omitempty"`
	Text      *TextBody `json:"text,omitempty"`
	PlainText string    `json:"plain_text,omitempty"`
}

// TextBody holds the raw text of a rich text run
type TextBody struct {
	Content string `json:"content"`
}

// Option is one named choice of a multi-select property
type Option struct {
	Name string `json:"name"`
}

// Property is a tagged-variant page property. Only the variant matching
// the property's type is populated; the others stay nil.
type Property struct {
	Type        string     `json:"type,omitempty"`
	Title       []RichText `json:"title,omitempty"`
	MultiSelect []Option   `json:"multi_select,omitempty"`
}

// MarshalJSON emits only the variant that is set. The nil / empty
// distinction matters for multi-select: an empty non-nil slice must
// reach the service as [] to clear the property wholesale.
func (p Property) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{}
	switch {
	case p.Title != nil:
		body["title"] = p.Title
	case p.MultiSelect != nil:
		body["multi_select"] = p.MultiSelect
	}
	return json.Marshal(body)
}

// UnmarshalJSON decodes a property defensively: a property that is
// present but not shaped as expected is treated as absent, so decoding
// a partially populated page never fails.
func (p *Property) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Title       json.RawMessage `json:"title"`
		MultiSelect json.RawMessage `json:"multi_select"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	p.Type = raw.Type
	if len(raw.Title) > 0 {
		var runs []RichText
		if err := json.Unmarshal(raw.Title, &runs); err == nil {
			p.Title = runs
		}
	}
	if len(raw.MultiSelect) > 0 {
		var options []Option
		if err := json.Unmarshal(raw.MultiSelect, &options); err == nil {
			p.MultiSelect = options
		}
	}
	return nil
}

// Page is one record-level object in the external service
type Page struct {
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	Properties     map[string]Property `json:"properties"`
}

// Paragraph is the body of a paragraph block
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
}

// Block is a unit of rich content attached to a page
type Block struct {
	Object    string     `json:"object,omitempty"`
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
}

// Parent identifies the database a page belongs to
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePageRequest creates a page with its properties and initial
// children in a single call
type CreatePageRequest struct {
	Parent     Parent              `json:"parent"`
	Properties map[string]Property `json:"properties"`
	Children   []Block             `json:"children,omitempty"`
}

// UpdatePageRequest patches page properties and/or the archived flag
type UpdatePageRequest struct {
	Properties map[string]Property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}

// MultiSelectCondition filters on multi-select membership
type MultiSelectCondition struct {
	Contains string `json:"contains"`
}

// Filter is a single-property query filter
type Filter struct {
	Property    string                `json:"property"`
	MultiSelect *MultiSelectCondition `json:"multi_select,omitempty"`
}

// Sort orders query results by a page timestamp
type Sort struct {
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
}

// QueryRequest queries a database
type QueryRequest struct {
	Filter   *Filter `json:"filter,omitempty"`
	Sorts    []Sort  `json:"sorts,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

type blockListResponse struct {
	Results []Block `json:"results"`
}

type appendChildrenRequest struct {
	Children []Block `json:"children"`
}
