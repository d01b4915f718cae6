package tutor

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, frames ...interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for _, f := range frames {
		require.NoError(t, writeFrame(w, f))
	}
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestWriteFrameShapes(t *testing.T) {
	assert.Equal(t,
		`{"type":"chunk","content":"Let's think about that."}`+"\n",
		render(t, chunkFrame{Type: "chunk", Content: "Let's think about that."}))

	assert.Equal(t,
		`{"type":"done","sessionId":"abc-123","fullResponse":"Great work!"}`+"\n",
		render(t, doneFrame{Type: "done", SessionID: "abc-123", FullResponse: "Great work!"}))

	assert.Equal(t,
		`{"type":"error","error":"stream interrupted"}`+"\n",
		render(t, errorFrame{Type: "error", Error: "stream interrupted"}))
}

func TestWriteFrameEscapesContent(t *testing.T) {
	// Chunk content with quotes and newlines must stay one line per frame.
	out := render(t, chunkFrame{Type: "chunk", Content: "line one\nsaid \"hi\""})

	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("\n")))
	assert.Contains(t, out, `\n`)
	assert.Contains(t, out, `\"hi\"`)
}

func TestWriteFrameSequence(t *testing.T) {
	out := render(t,
		chunkFrame{Type: "chunk", Content: "He"},
		chunkFrame{Type: "chunk", Content: "llo"},
		doneFrame{Type: "done", SessionID: "s1", FullResponse: "Hello"},
	)

	lines := bytes.Split(bytes.TrimSuffix([]byte(out), []byte("\n")), []byte("\n"))
	assert.Len(t, lines, 3)
}
