package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goxviet/internal/keyevent"
)

func TestMarkingPosterStampsEveryEvent(t *testing.T) {
	var got []Event
	p := NewMarkingPoster(PosterFunc(func(ev Event) error {
		got = append(got, ev)
		return nil
	}))

	pair := KeyPress(keyevent.KeyDelete, 0)
	require.NoError(t, p.Post(pair[0]))
	require.NoError(t, p.Post(pair[1]))
	require.NoError(t, p.Post(Event{Text: []rune("ấ"), Marker: 42}))

	require.Len(t, got, 3)
	for _, ev := range got {
		assert.True(t, ev.Marked())
		assert.True(t, IsOwn(ev.Marker))
	}
	assert.True(t, got[0].Down)
	assert.False(t, got[1].Down)
	assert.True(t, got[2].IsText())
}

func TestNewMarkingPosterDoesNotDoubleWrap(t *testing.T) {
	inner := NewMarkingPoster(PosterFunc(func(Event) error { return nil }))
	assert.Same(t, inner, NewMarkingPoster(inner))
}

func TestIsOwn(t *testing.T) {
	assert.False(t, IsOwn(0))
	assert.False(t, IsOwn(Marker-1))
	assert.True(t, IsOwn(Marker))
}

func TestChunks(t *testing.T) {
	assert.Nil(t, Chunks(nil, DefaultChunkLimit))

	short := []rune("được")
	assert.Equal(t, [][]rune{short}, Chunks(short, DefaultChunkLimit))

	long := []rune("abcdefghijklmnopqrstuvwxy")
	chunks := Chunks(long, DefaultChunkLimit)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 20)
	assert.Equal(t, "uvwxy", string(chunks[1]))
}

func TestChunksKeepsSurrogatePairsWhole(t *testing.T) {
	// 19 BMP runes then an astral rune: it needs two units and must move
	// to the next chunk intact.
	text := append([]rune("aaaaaaaaaaaaaaaaaaa"), '😀', 'b')
	chunks := Chunks(text, DefaultChunkLimit)
	require.Len(t, chunks, 2)
	assert.Equal(t, 19, UTF16Len(chunks[0]))
	assert.Equal(t, []rune{'😀', 'b'}, chunks[1])

	for _, c := range Chunks([]rune("😀😀😀"), 3) {
		assert.LessOrEqual(t, UTF16Len(c), 3)
		assert.Len(t, c, 1)
	}
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(nil))
	assert.Equal(t, 4, UTF16Len([]rune("việt")))
	assert.Equal(t, 2, UTF16Len([]rune("😀")))
}
