package version

import (
	"github.com/molasses-games/porter/comm"
	"github.com/molasses-games/porter/mansion"
)

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("version", "Prints the current version of porter")
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	comm.Logf("%s", ctx.VersionString)
}
