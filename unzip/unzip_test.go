package unzip

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/efarrer/iothrottler"
	"github.com/itchio/arkive/zip"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entrySpec struct {
	name string
	data []byte
	mode os.FileMode
}

func makeZip(t *testing.T, path string, entries []entrySpec) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, spec := range entries {
		fh := &zip.FileHeader{
			Name:   spec.name,
			Method: zip.Deflate,
		}

		if strings.HasSuffix(spec.name, "/") {
			fh.SetMode(os.ModeDir | 0755)
			_, err := zw.CreateHeader(fh)
			require.NoError(t, err)
			continue
		}

		mode := spec.mode
		if mode == 0 {
			mode = 0644
		}
		fh.SetMode(mode)

		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)
		_, err = w.Write(spec.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// noiseBytes generates deterministic, poorly-compressible data, so the
// deflate stream stays large enough to mangle in the middle
func noiseBytes(n int) []byte {
	data := make([]byte, n)
	seed := uint32(0xdecafbad)
	for i := range data {
		seed = seed*1664525 + 1013904223
		data[i] = byte(seed >> 24)
	}
	return data
}

// flipBytes inverts count bytes of the file at offset
func flipBytes(t *testing.T, path string, offset int64, count int) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, count)
	_, err = f.ReadAt(buf, offset)
	require.NoError(t, err)
	for i := range buf {
		buf[i] ^= 0xff
	}
	_, err = f.WriteAt(buf, offset)
	require.NoError(t, err)
}

func listFiles(t *testing.T, dir string) map[string]string {
	files := make(map[string]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func Test_Extract(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-extract")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "lib/"},
		{name: "lib/a.txt", data: []byte("Hi")},
		{name: "lib/sub/"},
		{name: "lib/sub/b.txt", data: []byte("Oh well")},
		{name: "README.md", data: []byte("Really?")},
		{name: "deep/very/deep/thing.txt", data: []byte("no dir entries for my parents")},
	})

	target := filepath.Join(dir, "out")
	res, err := Extract(context.Background(), archive, target, Options{})
	require.NoError(t, err)

	assert.EqualValues(t, 4, res.Files)
	assert.EqualValues(t, 2, res.Dirs)
	assert.Equal(t, map[string]string{
		"lib/a.txt":                "Hi",
		"lib/sub/b.txt":            "Oh well",
		"README.md":                "Really?",
		"deep/very/deep/thing.txt": "no dir entries for my parents",
	}, listFiles(t, target))

	// re-extracting into a fresh target produces the same tree
	target2 := filepath.Join(dir, "out2")
	_, err = Extract(context.Background(), archive, target2, Options{})
	require.NoError(t, err)
	assert.Equal(t, listFiles(t, target), listFiles(t, target2))
}

func Test_ExtractOverwrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-overwrite")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "a.txt", data: []byte("fresh")},
	})

	target := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(target, 0755))
	stray := filepath.Join(target, "old.txt")
	require.NoError(t, ioutil.WriteFile(stray, []byte("stale"), 0644))

	// without overwrite, pre-existing files survive
	_, err = Extract(context.Background(), archive, target, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a.txt":   "fresh",
		"old.txt": "stale",
	}, listFiles(t, target))

	// with overwrite, the target is wiped first
	_, err = Extract(context.Background(), archive, target, Options{Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a.txt": "fresh",
	}, listFiles(t, target))
}

func Test_ExtractSourcePath(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-sourcepath")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "lib/"},
		{name: "lib/a.txt", data: []byte("a")},
		{name: "lib/sub/"},
		{name: "lib/sub/b.txt", data: []byte("b")},
		{name: "README.md", data: []byte("nope")},
	})

	target := filepath.Join(dir, "out")
	res, err := Extract(context.Background(), archive, target, Options{SourcePath: "lib/"})
	require.NoError(t, err)

	assert.EqualValues(t, 2, res.Files)
	assert.Equal(t, map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "b",
	}, listFiles(t, target))
}

func Test_ExtractEmptyDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-emptydir")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "empty/"},
		{name: "a.txt", data: []byte("a")},
	})

	target := filepath.Join(dir, "out")
	_, err = Extract(context.Background(), archive, target, Options{})
	require.NoError(t, err)

	stat, err := os.Stat(filepath.Join(target, "empty"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func Test_ExtractModes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permissions on windows")
	}

	dir, err := ioutil.TempDir("", "unzip-modes")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "bin/launch.sh", data: []byte("#!/bin/sh\n"), mode: 0755},
		{name: "doc.txt", data: []byte("hi"), mode: 0644},
	})

	target := filepath.Join(dir, "out")
	_, err = Extract(context.Background(), archive, target, Options{})
	require.NoError(t, err)

	stat, err := os.Stat(filepath.Join(target, "bin", "launch.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), stat.Mode().Perm())

	stat, err = os.Stat(filepath.Join(target, "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), stat.Mode().Perm())
}

func Test_ExtractEntryOrder(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-order")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	specs := []entrySpec{
		{name: "one.txt", data: []byte("1")},
		{name: "two.txt", data: []byte("2")},
		{name: "three.txt", data: []byte("3")},
		{name: "four.txt", data: []byte("4")},
	}
	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, specs)

	var done []string
	target := filepath.Join(dir, "out")
	var totalKnown int64
	_, err = Extract(context.Background(), archive, target, Options{
		OnUncompressedSizeKnown: func(totalBytes int64) {
			totalKnown = totalBytes
		},
		OnEntryDone: func(path string) {
			rel, err := filepath.Rel(target, path)
			require.NoError(t, err)
			done = append(done, filepath.ToSlash(rel))
		},
	})
	require.NoError(t, err)

	// file writes complete in archive order, one at a time
	assert.Equal(t, []string{"one.txt", "two.txt", "three.txt", "four.txt"}, done)
	assert.EqualValues(t, 4, totalKnown)
}

func Test_ExtractThrottled(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-throttled")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "a.txt", data: []byte("some bytes going through the pool")},
	})

	target := filepath.Join(dir, "out")
	_, err = Extract(context.Background(), archive, target, Options{
		Bandwidth: iothrottler.Unlimited,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"a.txt": "some bytes going through the pool",
	}, listFiles(t, target))
}

func Test_ExtractCancelBeforeStart(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-cancel")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "a.txt", data: []byte("a")},
		{name: "b.txt", data: []byte("b")},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := filepath.Join(dir, "out")
	res, err := Extract(ctx, archive, target, Options{})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, context.Canceled, errors.Cause(err))

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func Test_ExtractCancelMidFlight(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-cancel-mid")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "one.txt", data: []byte("1")},
		{name: "two.txt", data: []byte("2")},
		{name: "three.txt", data: []byte("3")},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target := filepath.Join(dir, "out")
	_, err = Extract(ctx, archive, target, Options{
		OnEntryDone: func(path string) {
			// cancel as soon as the first write lands
			cancel()
		},
	})
	require.Error(t, err)
	assert.Equal(t, context.Canceled, errors.Cause(err))

	// later queued writes never started
	var names []string
	for name := range listFiles(t, target) {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"one.txt"}, names)
}

func Test_ExtractCorrupt(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-corrupt")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "garbage.zip")
	require.NoError(t, ioutil.WriteFile(archive, []byte("this is not a zip file at all"), 0644))

	target := filepath.Join(dir, "out")
	_, err = Extract(context.Background(), archive, target, Options{})
	require.Error(t, err)

	ee, ok := err.(*ExtractError)
	require.True(t, ok, "expected *ExtractError, got %#v", err)
	assert.Equal(t, ErrorKindCorruptZip, ee.Kind)
	assert.True(t, strings.HasPrefix(ee.Error(), "Corrupt ZIP: "))
	assert.Error(t, ee.Cause())
}

func Test_ExtractCorruptEntryData(t *testing.T) {
	dir, err := ioutil.TempDir("", "unzip-corrupt-entry")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	archive := filepath.Join(dir, "fixture.zip")
	makeZip(t, archive, []entrySpec{
		{name: "blob.bin", data: noiseBytes(64 * 1024)},
	})

	// mangle the deflate stream, far from the local header and from the
	// central directory, so the archive still opens fine and only the
	// entry's read stream fails
	flipBytes(t, archive, 2048, 128)

	target := filepath.Join(dir, "out")
	_, err = Extract(context.Background(), archive, target, Options{})
	require.Error(t, err)

	ee, ok := err.(*ExtractError)
	require.True(t, ok, "expected *ExtractError, got %#v", err)
	assert.Equal(t, ErrorKindCorruptZip, ee.Kind)
	assert.True(t, strings.HasPrefix(ee.Error(), "Corrupt ZIP: "))
	assert.Error(t, ee.Cause())
}
