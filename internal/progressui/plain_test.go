package progressui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainRenderer_Update_OutputFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.Update(FileEvent{Path: "src/main.go", Chunks: 3, Current: 1, Total: 4})

	output := buf.String()
	assert.Contains(t, output, "1/4")
	assert.Contains(t, output, "src/main.go")
	assert.Contains(t, output, "3 chunks")
}

func TestPlainRenderer_Update_ReportsError(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.Update(FileEvent{Path: "broken.go", Err: errors.New("parse failed"), Current: 2, Total: 4})

	output := buf.String()
	assert.Contains(t, output, "broken.go")
	assert.Contains(t, output, "parse failed")
}

func TestPlainRenderer_Complete_WithErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.Complete(CompletionStats{Files: 4, Chunks: 12, Duration: 3 * time.Second, Errors: 1})

	output := buf.String()
	assert.Contains(t, output, "4 files")
	assert.Contains(t, output, "12 chunks")
	assert.Contains(t, output, "1 errors")
}

func TestPlainRenderer_NoANSICodes(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewPlainRenderer(Config{Output: buf})

	r.Update(FileEvent{Path: "a.go", Chunks: 1, Current: 1, Total: 1})
	r.Complete(CompletionStats{Files: 1, Chunks: 1})

	output := buf.String()
	assert.NotContains(t, output, "\x1b[")
}
