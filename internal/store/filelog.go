package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/blockaviate/internal/block"
)

// maxRecordSize bounds a single persisted line.
const maxRecordSize = 1 << 20

// FileLog persists a chain as newline-delimited canonical JSON.
//
// No file handle is held between calls: every Append opens the file in
// append mode, writes one line, syncs and closes it. A crash mid-append can
// only damage the final line, which Load then reports as corrupt.
type FileLog struct {
	path string
}

// NewFileLog returns a FileLog for path. The file is created on first Append.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path returns the log file location.
func (f *FileLog) Path() string {
	return f.path
}

// Load streams the log line by line in file order.
// Returns an empty (non-nil) slice if the file does not exist.
func (f *FileLog) Load(ctx context.Context) ([]block.Block, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []block.Block{}, nil
	}
	if err != nil {
		return nil, newStorageError(f.path, "open log for read", err)
	}
	defer file.Close()

	blocks := []block.Block{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			return nil, newCorruptError(f.path, line, "empty record", nil)
		}

		b, err := decodeRecord(raw)
		if err != nil {
			return nil, newCorruptError(f.path, line, "malformed record", err)
		}
		blocks = append(blocks, b)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, newCorruptError(f.path, line+1, "record exceeds maximum size", err)
		}
		return nil, newStorageError(f.path, "read log", err)
	}

	return blocks, nil
}

// Append writes one record and syncs it to disk before returning.
func (f *FileLog) Append(ctx context.Context, b block.Block) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return newStorageError(f.path, "open log for append", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = newStorageError(f.path, "close log", closeErr)
		}
	}()

	if _, err := file.Write(encodeRecord(b)); err != nil {
		return newStorageError(f.path, fmt.Sprintf("write block %d", b.Index), err)
	}
	if err := file.Sync(); err != nil {
		return newStorageError(f.path, fmt.Sprintf("sync block %d", b.Index), err)
	}

	return nil
}

// Close is a no-op; FileLog holds no handle between calls.
func (f *FileLog) Close() error {
	return nil
}
