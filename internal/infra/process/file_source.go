package process

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tldrscope/internal/domain"
)

// IndexFileName is the index read when a FileSource points at a directory.
const IndexFileName = "index.tldr"

// FileSource serves previously captured protocol text. The index is one
// file; each command lives next to it as `<command>.tldr`.
type FileSource struct {
	path string
	dir  string
}

// NewFileSource accepts either the index file or the directory holding it.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "process.file_source", "input path is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, unavailable(path, err)
	}
	if info.IsDir() {
		return &FileSource{path: filepath.Join(path, IndexFileName), dir: path}, nil
	}
	return &FileSource{path: path, dir: filepath.Dir(path)}, nil
}

// Path returns the index file path.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Index(ctx context.Context) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", unavailable(s.path, err)
	}
	return string(data), nil
}

func (s *FileSource) Command(ctx context.Context, name string) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, filepath.Base(name)+".tldr")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrCommandUnavailable, path, err)
	}
	return string(data), nil
}

func unavailable(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.E(domain.CodeProtocolUnavailable, "process.file_source", fmt.Sprintf("%s does not exist", path), err)
	}
	return domain.E(domain.CodeProtocolUnavailable, "process.file_source", fmt.Sprintf("read %s", path), err)
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
