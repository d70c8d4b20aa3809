package normalize

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

const variationSelector16 = "\uFE0F"

// isEmojiCluster reports whether a grapheme cluster is a listed emoji.
// Unqualified forms such as "❤" without U+FE0F are matched too.
func isEmojiCluster(cluster string) bool {
	if gomoji.ContainsEmoji(cluster) {
		return true
	}
	return !strings.HasSuffix(cluster, variationSelector16) && gomoji.ContainsEmoji(cluster+variationSelector16)
}

// ExtractEmoji splits text into its emoji grapheme clusters (concatenated in
// order of appearance) and the text with those clusters removed.
// ZWJ sequences, flags, keycaps and skin-tone variants stay whole.
func ExtractEmoji(text string) (emoji, rest string) {
	var found, kept strings.Builder

	state := -1
	remaining := text
	for len(remaining) > 0 {
		var cluster string
		cluster, remaining, _, state = uniseg.StepString(remaining, state)
		if isEmojiCluster(cluster) {
			found.WriteString(cluster)
			continue
		}
		kept.WriteString(cluster)
	}

	return found.String(), kept.String()
}
