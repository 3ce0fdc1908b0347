package mkdir

import (
	"os"

	"github.com/pkg/errors"

	"github.com/molasses-games/porter/comm"
	"github.com/molasses-games/porter/mansion"
	"github.com/molasses-games/porter/unzip"
)

var args = struct {
	path *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("mkdir", "Create an empty directory and all required parent directories (mkdir -p)").Hidden()
	args.path = cmd.Arg("path", "Directory to create").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(ctx, *args.path))
}

func Do(ctx *mansion.Context, dir string) error {
	comm.Debugf("mkdir -p %s", dir)

	err := os.MkdirAll(dir, unzip.DirMode)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
