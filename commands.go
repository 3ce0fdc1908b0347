package main

import (
	"github.com/molasses-games/porter/cmd/cat"
	"github.com/molasses-games/porter/cmd/extract"
	"github.com/molasses-games/porter/cmd/ls"
	"github.com/molasses-games/porter/cmd/mkdir"
	versioncmd "github.com/molasses-games/porter/cmd/version"
	"github.com/molasses-games/porter/cmd/wipe"
	"github.com/molasses-games/porter/mansion"
)

// Each of these specify their own arguments and flags in
// their own package.
func registerCommands(ctx *mansion.Context) {
	// documented commands

	extract.Register(ctx)
	ls.Register(ctx)
	versioncmd.Register(ctx)

	// hidden commands

	cat.Register(ctx)
	wipe.Register(ctx)
	mkdir.Register(ctx)
}
