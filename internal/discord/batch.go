// Package discord renders and delivers webhook messages.
//
// Discord rejects a webhook request carrying more than ten embeds or more
// than 6000 characters of embed text, and a single embed description longer
// than 4096 characters. Batch splits content to respect all three limits
// while keeping the input order.
package discord

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxEmbedsPerMessage = 10
	MaxCharsPerMessage  = 6000
	MaxDescription      = 4096
)

// Colors used by the notifications.
const (
	ColorNeutral = 0x5865F2
	ColorVictory = 0x2ECC71
	ColorDefeat  = 0xE74C3C
	ColorWarning = 0xE67E22
	ColorInfo    = 0x3498DB
)

type Embed struct {
	Description string `json:"description"`
	Color       int    `json:"color,omitempty"`
}

func (e Embed) size() int {
	return utf8.RuneCountInString(e.Description)
}

// Batch groups embeds into request-sized chunks. Each chunk holds at most
// MaxEmbedsPerMessage embeds and MaxCharsPerMessage description characters.
// Embeds whose description exceeds MaxDescription are first split on line
// boundaries into several embeds of the same color.
func Batch(embeds []Embed) [][]Embed {
	var chunks [][]Embed
	var current []Embed
	size := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
		}
		current = nil
		size = 0
	}

	for _, embed := range embeds {
		for _, part := range splitEmbed(embed) {
			n := part.size()
			if len(current) == MaxEmbedsPerMessage || size+n > MaxCharsPerMessage {
				flush()
			}
			current = append(current, part)
			size += n
		}
	}
	flush()

	return chunks
}

func splitEmbed(embed Embed) []Embed {
	if embed.size() <= MaxDescription {
		return []Embed{embed}
	}
	parts := SplitDescription(embed.Description, MaxDescription)
	out := make([]Embed, 0, len(parts))
	for _, part := range parts {
		out = append(out, Embed{Description: part, Color: embed.Color})
	}
	return out
}

// SplitDescription breaks text into pieces of at most limit characters,
// preferring line boundaries. A single line longer than limit is cut at the
// character limit.
func SplitDescription(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0
	// started is set once current holds a line, even an empty one.
	started := false

	flush := func() {
		if started {
			parts = append(parts, current.String())
		}
		current.Reset()
		currentLen = 0
		started = false
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
		}

		lineLen := utf8.RuneCountInString(line)
		sep := 0
		if started {
			sep = 1
		}
		if currentLen+sep+lineLen > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentLen += sep + lineLen
		started = true
	}
	flush()

	return parts
}
