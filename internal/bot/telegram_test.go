package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortTextIsOneChunk(t *testing.T) {
	chunks := splitMessage("short result", 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short result", chunks[0])
}

func TestSplitMessagePrefersLineBoundaries(t *testing.T) {
	text := strings.Repeat("line of feedback\n", 20)

	chunks := splitMessage(text, 100)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
		assert.False(t, strings.HasSuffix(chunk, "line of"), "chunk must not split a line: %q", chunk)
	}
	rejoined := strings.TrimRight(strings.Join(chunks, "\n"), "\n")
	assert.Equal(t, strings.TrimRight(text, "\n"), rejoined)
}

func TestSplitMessageNeverSplitsRunes(t *testing.T) {
	// No newlines at all, so the cut falls inside the window. Each rune
	// here is multi-byte and the limit lands mid-character.
	text := strings.Repeat("резюме", 50)

	chunks := splitMessage(text, 25)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk must stay valid UTF-8: %q", chunk)
		assert.LessOrEqual(t, len(chunk), 25)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitMessageEmptyText(t *testing.T) {
	assert.Empty(t, splitMessage("", 100))
}
