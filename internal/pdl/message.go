package pdl

import "fmt"

// MessageContent is one piece of a message's content: either a run of
// text or an inline image, mirroring the reference's MessageContent enum.
type MessageContent struct {
	Text      string
	Image     []byte
	ImageType ImageType
	IsImage   bool
}

// TextContent builds a plain-text content chunk.
func TextContent(s string) MessageContent { return MessageContent{Text: s} }

// ImageContent builds an inline-image content chunk.
func ImageContent(t ImageType, bytes []byte) MessageContent {
	return MessageContent{IsImage: true, ImageType: t, Image: bytes}
}

// String renders the content back to its PDL source form, round-tripping
// an image as a <|raw_media(type:base64)|> token.
func (c MessageContent) String() string {
	if c.IsImage {
		return fmt.Sprintf("<|raw_media(%s:%s)|>", c.ImageType.Extension(), encodeBase64(c.Image))
	}
	return c.Text
}

// Message is one turn: a Role plus one or more content chunks (plain
// text is always exactly one chunk; images may be interleaved with text
// within a single turn).
type Message struct {
	Role    Role
	Content []MessageContent
}

// SimpleMessage builds a single-chunk text message.
func SimpleMessage(role Role, text string) Message {
	return Message{Role: role, Content: []MessageContent{TextContent(text)}}
}

// IsSystemPrompt reports whether m is a single-chunk system message.
func (m Message) IsSystemPrompt() bool {
	return m.Role == RoleSystem && len(m.Content) == 1 && !m.Content[0].IsImage
}

// HasImage reports whether any chunk of m is an inline image.
func (m Message) HasImage() bool {
	for _, c := range m.Content {
		if c.IsImage {
			return true
		}
	}
	return false
}

// Text concatenates every text chunk of m, dropping images, for callers
// that only need the prompt's textual content (e.g. TF-IDF keyword
// extraction over a conversation).
func (m Message) Text() string {
	var out string
	for _, c := range m.Content {
		if !c.IsImage {
			out += c.Text
		}
	}
	return out
}
