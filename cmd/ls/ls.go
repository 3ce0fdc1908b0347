package ls

import (
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/itchio/arkive/zip"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/molasses-games/porter/comm"
	"github.com/molasses-games/porter/mansion"
)

var args = struct {
	file *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("ls", "Prints the list of entries contained in a zip archive")
	args.file = cmd.Arg("file", "Path of the .zip archive to list").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(ctx, *args.file))
}

func Do(ctx *mansion.Context, file string) error {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return errors.WithStack(err)
	}
	defer zr.Close()

	var numFiles, numDirs int
	var totalSize int64

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Mode", "Size", "Name"})
	table.SetBorder(false)

	for _, f := range zr.File {
		info := f.FileInfo()
		if info.IsDir() {
			numDirs++
		} else {
			numFiles++
			totalSize += int64(f.UncompressedSize64)
		}

		if ctx.JSON {
			comm.Result(&mansion.EntryResult{
				Type: "entry",
				Path: f.Name,
				Size: int64(f.UncompressedSize64),
				Mode: info.Mode().String(),
			})
			continue
		}

		table.Append([]string{
			info.Mode().String(),
			humanize.IBytes(f.UncompressedSize64),
			f.Name,
		})
	}

	if ctx.JSON {
		comm.Result(&mansion.ArchiveSummaryResult{
			Type:             "summary",
			NumFiles:         numFiles,
			NumDirs:          numDirs,
			UncompressedSize: totalSize,
		})
		return nil
	}

	table.Render()
	comm.Statf("%d files, %d dirs, %s total", numFiles, numDirs, humanize.IBytes(uint64(totalSize)))

	return nil
}
