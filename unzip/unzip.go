// Package unzip extracts the contents of .zip archives onto the filesystem,
// and reads single named entries into memory.
//
// Extraction is driven by walking the archive's entries in archive order.
// Directory records are created inline, ahead of file writes; file records
// are funneled through a serial queue so that at most one entry is being
// written to disk at any time, no matter how large the archive is.
package unzip

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/efarrer/iothrottler"
	"github.com/itchio/arkive/zip"
	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"

	"github.com/molasses-games/porter/serialqueue"
)

const (
	// DirMode is the mode for directories created during extraction
	DirMode = 0755

	copyBufferSize = 32 * 1024
)

// Options change how Extract behaves.
type Options struct {
	// Overwrite recursively deletes the target directory before any
	// entry is processed.
	Overwrite bool

	// SourcePath keeps only entries whose archive-internal name starts
	// with this literal prefix, and strips the prefix before joining to
	// the target path. The match is not segment-aware: "lib" also
	// matches "libfoo/".
	SourcePath string

	// Consumer receives log messages and progress updates
	Consumer *state.Consumer

	// Bandwidth, when non-zero, throttles disk writes
	Bandwidth iothrottler.Bandwidth

	// OnUncompressedSizeKnown is called once, with the total number of
	// uncompressed bytes the walk will extract
	OnUncompressedSizeKnown func(totalBytes int64)

	// OnEntryDone is called with the on-disk path of every file entry
	// that has been fully written
	OnEntryDone func(path string)
}

// ExtractResult tells how many items were extracted of each kind
type ExtractResult struct {
	Dirs  int
	Files int

	// Size is the total number of uncompressed bytes written
	Size int64
}

// Extract unpacks the archive at archivePath into targetPath, creating it
// if needed. An unparsable archive fails with an *ExtractError of kind
// ErrorKindCorruptZip, whether it fails at open or midway through an
// entry's stream; filesystem errors are passed through.
//
// Cancelling ctx stops the walk, prevents queued writes from starting, and
// interrupts the in-flight write between chunks. Already-written files are
// not rolled back.
func Extract(ctx context.Context, archivePath string, targetPath string, opts Options) (*ExtractResult, error) {
	consumer := opts.Consumer
	if consumer == nil {
		consumer = &state.Consumer{}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, toExtractError(err)
	}
	defer zr.Close()

	if opts.Overwrite {
		err = os.RemoveAll(targetPath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	ex := &extractor{
		targetPath: targetPath,
		opts:       opts,
		consumer:   consumer,
		buf:        make([]byte, copyBufferSize),
	}
	return ex.walk(ctx, &zr.Reader)
}

type extractor struct {
	targetPath string
	opts       Options
	consumer   *state.Consumer
	pool       *iothrottler.IOThrottlerPool

	// buf is shared across entry writes: the queue runs them one at a time
	buf []byte

	totalBytes int64
	doneBytes  int64

	res ExtractResult
}

func (ex *extractor) walk(ctx context.Context, zr *zip.Reader) (*ExtractResult, error) {
	for _, f := range zr.File {
		ex.totalBytes += int64(f.UncompressedSize64)
	}
	if ex.opts.OnUncompressedSizeKnown != nil {
		ex.opts.OnUncompressedSizeKnown(ex.totalBytes)
	}

	if ex.opts.Bandwidth > 0 {
		ex.pool = iothrottler.NewIOThrottlerPool(ex.opts.Bandwidth)
		defer ex.pool.ReleasePool()
	}

	qctx, cancel := context.WithCancel(ctx)
	q := serialqueue.New(qctx, 1)
	defer func() {
		// settle in-flight and queued writes before the archive
		// handle goes away
		cancel()
		q.Wait()
	}()

	// the last scheduled operation is authoritative for overall
	// completion: by the time it has settled, every earlier write has
	// already gone through the queue
	var last *serialqueue.Op

	for _, f := range zr.File {
		if ctx.Err() != nil || q.Err() != nil {
			break
		}

		entryName, ok := filterEntry(f.Name, ex.opts.SourcePath)
		if !ok {
			ex.consumer.Debugf("⊘ %s", f.Name)
			continue
		}

		if strings.HasSuffix(f.Name, "/") {
			// directory creation is deliberately not queued: later
			// file writes need these to exist, and MkdirAll is
			// idempotent anyway
			ex.consumer.Debugf("→ %s (dir)", entryName)
			dst := filepath.Join(ex.targetPath, filepath.FromSlash(entryName))
			err := os.MkdirAll(dst, DirMode)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			ex.res.Dirs++
			continue
		}

		entry := f
		name := entryName
		last = q.Push(func() error {
			return ex.extractEntry(qctx, entry, name)
		})
	}

	if last != nil {
		last.Wait()
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ex.res, nil
}

// extractEntry writes one file entry to disk: parent directories first,
// then a chunked copy of the entry's decompressed stream into a file
// opened with the entry's translated mode. A failed or interrupted copy
// closes the sink and leaves the partial file in place.
func (ex *extractor) extractEntry(ctx context.Context, f *zip.File, entryName string) error {
	dst := filepath.Join(ex.targetPath, filepath.FromSlash(entryName))

	err := os.MkdirAll(filepath.Dir(dst), DirMode)
	if err != nil {
		return errors.WithStack(err)
	}

	rc, err := f.Open()
	if err != nil {
		return toExtractError(err)
	}
	defer rc.Close()

	ex.consumer.Debugf("→ %s", entryName)
	ex.consumer.ProgressLabel(entryName)

	perm := os.FileMode(modeOf(f.ExternalAttrs)) & os.ModePerm
	w, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.WithStack(err)
	}

	var sink io.WriteCloser = w
	if ex.pool != nil {
		sink, err = ex.pool.AddWriter(w)
		if err != nil {
			w.Close()
			return errors.WithStack(err)
		}
	}

	err = ex.copy(ctx, sink, rc)
	if err != nil {
		// best-effort: the enclosing operation's failure takes precedence
		sink.Close()
		return err
	}

	err = sink.Close()
	if err != nil {
		return errors.WithStack(err)
	}

	ex.res.Files++
	if ex.opts.OnEntryDone != nil {
		ex.opts.OnEntryDone(dst)
	}
	return nil
}

func (ex *extractor) copy(ctx context.Context, dst io.Writer, src io.Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(ex.buf)
		if n > 0 {
			m, writeErr := dst.Write(ex.buf[:n])
			if writeErr != nil {
				return errors.WithStack(writeErr)
			}

			ex.doneBytes += int64(m)
			ex.res.Size += int64(m)
			if ex.totalBytes > 0 {
				ex.consumer.Progress(float64(ex.doneBytes) / float64(ex.totalBytes))
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			// the read side is the archive stream: decompression and
			// checksum failures count as corruption. The write side is
			// the filesystem, so write errors pass through untouched.
			return toExtractError(readErr)
		}
	}
}
