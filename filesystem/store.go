// Package filesystem keeps media blobs for the self-hosted media store in a
// local directory. Blobs are written through a temp file and renamed into
// place, and their etag is the hex SHA-256 of the content.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/sagarc03/folio"
)

// sniffLen is how much of a blob Walk reads to detect its content type.
const sniffLen = 512

// Entry describes one stored blob found by Walk.
type Entry struct {
	Path        string
	Size        int64
	ETag        string
	ContentType string
}

// Store is a folio.FileStorage rooted at one directory. All access goes
// through an os.Root, so paths cannot escape it.
type Store struct {
	root  *os.Root
	owned bool
}

// New wraps an already opened root. The caller keeps ownership of root.
func New(root *os.Root) *Store {
	return &Store{root: root}
}

// Open opens dir as a Store. With create the directory is made when
// missing; otherwise a missing directory is an error.
func Open(dir string, create bool) (*Store, error) {
	if create {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create media directory: %w", err)
		}
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("media directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("open media directory: %w", err)
	}

	return &Store{root: root, owned: true}, nil
}

// Close releases the root if the Store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.root.Close()
}

// Get opens a blob. Returns folio.ErrNotFound when it does not exist.
func (s *Store) Get(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, folio.ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", name, err)
	}

	return f, nil
}

// hashingWriter tees everything it writes into a digest and stops as soon
// as ctx is done.
type hashingWriter struct {
	ctx context.Context
	dst io.Writer
	sum hash.Hash
	n   int64
}

func (w *hashingWriter) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := w.dst.Write(p)
	w.sum.Write(p[:n])
	w.n += int64(n)
	return n, err
}

// Write stores content at name, replacing any existing blob. Parent
// folders are created as needed. A failed or canceled write leaves nothing
// behind.
func (s *Store) Write(ctx context.Context, name string, content io.Reader) (folio.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return folio.SaveResult{}, err
	}

	tmp := ".t" + uuid.NewString()
	f, err := s.root.Create(tmp)
	if err != nil {
		return folio.SaveResult{}, fmt.Errorf("create temp blob: %w", err)
	}

	committed := false
	defer func() {
		_ = f.Close()
		if committed {
			return
		}
		if err := s.root.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove temp blob", "name", tmp, "error", err)
		}
	}()

	hw := &hashingWriter{ctx: ctx, dst: f, sum: sha256.New()}
	if _, err := io.Copy(hw, content); err != nil {
		return folio.SaveResult{}, fmt.Errorf("write blob %s: %w", name, err)
	}

	if err := f.Sync(); err != nil {
		return folio.SaveResult{}, fmt.Errorf("sync blob %s: %w", name, err)
	}

	if dir := path.Dir(name); dir != "." {
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return folio.SaveResult{}, fmt.Errorf("create folder %s: %w", dir, err)
		}
	}

	if err := s.root.Rename(tmp, name); err != nil {
		return folio.SaveResult{}, fmt.Errorf("move blob into place %s: %w", name, err)
	}
	committed = true

	return folio.SaveResult{
		BytesWritten: hw.n,
		Etag:         hex.EncodeToString(hw.sum.Sum(nil)),
	}, nil
}

// Delete removes a blob and then any parent folders it left empty.
// Returns folio.ErrNotFound when the blob does not exist.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return folio.ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", name, err)
	}

	s.pruneEmpty(path.Dir(name))
	return nil
}

// pruneEmpty removes dir and its ancestors while they are empty. Remove
// refuses non-empty directories, which ends the climb.
func (s *Store) pruneEmpty(dir string) {
	for dir != "." && dir != "/" {
		if err := s.root.Remove(dir); err != nil {
			return
		}
		dir = path.Dir(dir)
	}
}

// Walk calls fn for every blob under the root, in lexical order. Files and
// folders whose name starts with a dot (temp files, the thumbnail cache)
// are skipped. Content types are sniffed from the first bytes of each blob.
func (s *Store) Walk(ctx context.Context, fn func(Entry) error) error {
	return fs.WalkDir(s.root.FS(), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if name != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		entry, err := s.describe(name)
		if err != nil {
			return err
		}

		return fn(entry)
	})
}

func (s *Store) describe(name string) (Entry, error) {
	f, err := s.root.Open(name)
	if err != nil {
		return Entry{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	sum := sha256.New()
	head := make([]byte, sniffLen)

	n, err := io.ReadFull(io.TeeReader(f, sum), head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Entry{}, fmt.Errorf("read %s: %w", name, err)
	}

	rest, err := io.Copy(sum, f)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", name, err)
	}

	return Entry{
		Path:        name,
		Size:        int64(n) + rest,
		ETag:        hex.EncodeToString(sum.Sum(nil)),
		ContentType: http.DetectContentType(head[:n]),
	}, nil
}
