package extract

import (
	"context"
	"os"
	"os/signal"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/efarrer/iothrottler"
	"github.com/pkg/errors"

	"github.com/molasses-games/porter/comm"
	"github.com/molasses-games/porter/mansion"
	"github.com/molasses-games/porter/unzip"
)

var args = struct {
	file       *string
	dir        *string
	overwrite  *bool
	sourcePath *string
	bps        *int64
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("extract", "Extract a .zip file")
	args.file = cmd.Arg("file", "Path of the .zip archive to extract").Required().String()
	args.dir = cmd.Flag("dir", "An optional directory to which to extract files (defaults to CWD)").Default(".").Short('d').String()
	args.overwrite = cmd.Flag("overwrite", "Wipe the destination directory before extracting").Bool()
	args.sourcePath = cmd.Flag("source-path", "Only extract entries under this archive-internal prefix, stripping it").String()
	args.bps = cmd.Flag("bps", "Limit disk write bandwidth, in bytes per second").Hidden().Int64()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(ctx, &ExtractParams{
		File: *args.file,
		Dir:  *args.dir,

		Overwrite:  *args.overwrite,
		SourcePath: *args.sourcePath,
		Bandwidth:  *args.bps,
	}))
}

type ExtractParams struct {
	File string
	Dir  string

	Overwrite  bool
	SourcePath string
	Bandwidth  int64
}

func Do(ctx *mansion.Context, params *ExtractParams) error {
	if params.File == "" {
		return errors.New("extract: File must be specified")
	}
	if params.Dir == "" {
		return errors.New("extract: Dir must be specified")
	}

	comm.Opf("Extracting zip %s to %s", params.File, params.Dir)

	cctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// a single interrupt cancels the extraction; in-flight chunks finish,
	// partially written files stay on disk
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		<-interrupts
		comm.Warn("Interrupted, stopping...")
		cancel()
	}()

	onEntryDone := func(path string) {
		comm.Result(&mansion.FileExtractedResult{
			Type: "entry",
			Path: path,
		})
	}

	opts := unzip.Options{
		Overwrite:  params.Overwrite,
		SourcePath: params.SourcePath,
		Consumer:   comm.NewStateConsumer(),
		OnUncompressedSizeKnown: func(totalBytes int64) {
			comm.StartProgressWithTotalBytes(totalBytes)
		},
		OnEntryDone: onEntryDone,
	}
	if params.Bandwidth > 0 {
		opts.Bandwidth = iothrottler.Bandwidth(params.Bandwidth) * iothrottler.BytesPerSecond
	}

	startTime := time.Now()

	res, err := unzip.Extract(cctx, params.File, params.Dir, opts)
	comm.EndProgress()

	if err != nil {
		return errors.Wrap(err, "unzipping")
	}

	duration := time.Since(startTime)
	bytesPerSec := float64(res.Size) / duration.Seconds()
	comm.Statf("Extracted %d dirs, %d files, %s at %s/s",
		res.Dirs, res.Files,
		humanize.IBytes(uint64(res.Size)), humanize.IBytes(uint64(bytesPerSec)))

	return nil
}
