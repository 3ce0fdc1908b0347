package unzip

import (
	"io"
	"io/ioutil"

	"github.com/itchio/arkive/zip"
)

// ReadEntryStream opens the archive at archivePath and returns a reader
// over the decompressed contents of the first entry whose name is exactly
// entryPath. The returned ReadCloser owns the archive handle: closing it
// closes both the entry stream and the archive.
//
// If the scan exhausts the archive without a match, the archive is closed
// and a *NotFoundError naming the entry is returned.
func ReadEntryStream(archivePath string, entryPath string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, toExtractError(err)
	}

	for _, f := range zr.File {
		if f.Name != entryPath {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, toExtractError(err)
		}
		return &entryStream{rc: rc, zr: zr}, nil
	}

	// best-effort: the not-found result takes precedence over close errors
	zr.Close()
	return nil, &NotFoundError{EntryPath: entryPath}
}

// ReadEntryBuffer reads the named entry's contents into one contiguous
// buffer.
func ReadEntryBuffer(archivePath string, entryPath string) ([]byte, error) {
	stream, err := ReadEntryStream(archivePath, entryPath)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	data, err := ioutil.ReadAll(stream)
	if err != nil {
		// mid-stream failures are archive-level: bad deflate data, crc
		// mismatches
		return nil, toExtractError(err)
	}
	return data, nil
}

type entryStream struct {
	rc io.ReadCloser
	zr *zip.ReadCloser
}

var _ io.ReadCloser = (*entryStream)(nil)

func (es *entryStream) Read(p []byte) (int, error) {
	return es.rc.Read(p)
}

func (es *entryStream) Close() error {
	err := es.rc.Close()
	if cErr := es.zr.Close(); err == nil {
		err = cErr
	}
	return err
}
