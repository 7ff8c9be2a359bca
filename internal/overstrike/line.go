// Package overstrike decodes manual-page style emphasis, where a glyph is
// printed twice around a backspace for bold and paired with an underscore
// for underline, into explicit start/end markers.
package overstrike

import "strings"

// Kind identifies a token in a decoded line
type Kind uint8

const (
	Text Kind = iota
	ULStart
	ULEnd
	BOStart
	BOEnd
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case ULStart:
		return "ul_start"
	case ULEnd:
		return "ul_end"
	case BOStart:
		return "bo_start"
	case BOEnd:
		return "bo_end"
	default:
		return "unknown"
	}
}

// Token is one decoded byte or markup marker
type Token struct {
	Kind Kind
	Ch   byte
}

// Segment is a run of text sharing the same emphasis
type Segment struct {
	Text      string
	Bold      bool
	Underline bool
}

// Line is a decoded line ready for rendering
type Line struct {
	Tokens []Token

	// Truncated is set when the line hit the length cutoff and was folded
	Truncated bool
}

// Plain returns the line text without markers
func (l *Line) Plain() string {
	if l == nil {
		return ""
	}
	var sb strings.Builder
	for _, t := range l.Tokens {
		if t.Kind == Text {
			sb.WriteByte(t.Ch)
		}
	}
	return sb.String()
}

// Len returns the number of text bytes in the line
func (l *Line) Len() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, t := range l.Tokens {
		if t.Kind == Text {
			n++
		}
	}
	return n
}

// HasMarkup reports whether the line carries any bold or underline run
func (l *Line) HasMarkup() bool {
	if l == nil {
		return false
	}
	for _, t := range l.Tokens {
		if t.Kind != Text {
			return true
		}
	}
	return false
}

// Segments splits the line into runs of uniform emphasis
func (l *Line) Segments() []Segment {
	if l == nil {
		return nil
	}

	var segs []Segment
	var sb strings.Builder
	bold, under := false, false

	flush := func() {
		if sb.Len() > 0 {
			segs = append(segs, Segment{Text: sb.String(), Bold: bold, Underline: under})
			sb.Reset()
		}
	}

	for _, t := range l.Tokens {
		switch t.Kind {
		case Text:
			sb.WriteByte(t.Ch)
		case BOStart, BOEnd:
			flush()
			bold = t.Kind == BOStart
		case ULStart, ULEnd:
			flush()
			under = t.Kind == ULStart
		}
	}
	flush()
	return segs
}

// Builder is an append-only token list. Backtracking is a logical Pop.
type Builder struct {
	tokens []Token
}

// Push appends a token
func (b *Builder) Push(t Token) {
	b.tokens = append(b.tokens, t)
}

// PushText appends a text token
func (b *Builder) PushText(c byte) {
	b.tokens = append(b.tokens, Token{Kind: Text, Ch: c})
}

// Pop removes and returns the last token
func (b *Builder) Pop() (Token, bool) {
	if len(b.tokens) == 0 {
		return Token{}, false
	}
	t := b.tokens[len(b.tokens)-1]
	b.tokens = b.tokens[:len(b.tokens)-1]
	return t, true
}

// Last returns the last token without removing it
func (b *Builder) Last() (Token, bool) {
	if len(b.tokens) == 0 {
		return Token{}, false
	}
	return b.tokens[len(b.tokens)-1], true
}

// Len returns the number of tokens
func (b *Builder) Len() int {
	return len(b.tokens)
}

// Take returns the tokens and resets the builder
func (b *Builder) Take() []Token {
	t := b.tokens
	b.tokens = nil
	return t
}
