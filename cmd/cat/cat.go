package cat

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/molasses-games/porter/mansion"
	"github.com/molasses-games/porter/unzip"
)

var args = struct {
	file  *string
	entry *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("cat", "Print the contents of a single zip entry to stdout").Hidden()
	args.file = cmd.Arg("file", "Path of the .zip archive to read").Required().String()
	args.entry = cmd.Arg("entry", "Archive-internal path of the entry to print").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(ctx, *args.file, *args.entry))
}

func Do(ctx *mansion.Context, file string, entry string) error {
	stream, err := unzip.ReadEntryStream(file, entry)
	if err != nil {
		return errors.WithStack(err)
	}
	defer stream.Close()

	_, err = io.Copy(os.Stdout, stream)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
