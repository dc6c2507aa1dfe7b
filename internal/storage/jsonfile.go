package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// jsonFiles keeps each collection in its own JSON document inside dir.
// Every Save rewrites all documents in full; each file is written to a
// temporary name and renamed so readers never see a truncated document.
type jsonFiles struct {
	dir string
	log *zap.SugaredLogger
}

// NewJSONFiles returns a Persister writing JSON documents into dir, creating
// the directory if needed.
func NewJSONFiles(dir string, logger *zap.SugaredLogger) (Persister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &jsonFiles{dir: dir, log: logger}, nil
}

// Load reads every document that exists. Unreadable files are skipped and
// reported through the returned error.
func (j *jsonFiles) Load(ctx context.Context) (*Snapshot, error) {
	docs := make(map[string][]byte, len(Documents))
	var errs error
	for _, name := range Documents {
		raw, err := os.ReadFile(filepath.Join(j.dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", name, err))
			continue
		}
		docs[name] = raw
	}
	snap, err := DecodeSnapshot(docs)
	return snap, multierr.Append(errs, err)
}

// Save rewrites all documents. It keeps going after a failed file so one bad
// write does not block the others.
func (j *jsonFiles) Save(ctx context.Context, snap *Snapshot) error {
	docs, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	var errs error
	var total uint64
	for _, name := range Documents {
		if err := j.writeFile(name, docs[name]); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		total += uint64(len(docs[name]))
	}
	j.log.Debugw("json store: documents written", "dir", j.dir, "size", humanize.Bytes(total))
	return errs
}

func (j *jsonFiles) writeFile(name string, data []byte) error {
	dst := filepath.Join(j.dir, name)
	tmp := filepath.Join(j.dir, "."+name+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; files are not held open between saves.
func (j *jsonFiles) Close() error {
	return nil
}
