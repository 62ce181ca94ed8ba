package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives rendered artifacts by filename.
type Sink interface {
	Write(ctx context.Context, filename string, data []byte) error
}

// DirSink writes artifacts into a directory, creating it on first write.
type DirSink struct {
	root string
}

// NewDirSink creates a sink rooted at the given directory.
func NewDirSink(root string) *DirSink {
	return &DirSink{root: root}
}

func (s *DirSink) Write(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(s.root, filename), data, 0o644)
}

var _ Sink = (*DirSink)(nil)
