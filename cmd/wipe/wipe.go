package wipe

import (
	"os"
	"path/filepath"
	"time"

	"github.com/itchio/wharf/state"
	"github.com/pkg/errors"

	"github.com/molasses-games/porter/comm"
	"github.com/molasses-games/porter/mansion"
)

var args = struct {
	path *string
}{}

func Register(ctx *mansion.Context) {
	cmd := ctx.App.Command("wipe", "Completely remove a directory (rm -rf)").Hidden()
	args.path = cmd.Arg("path", "Path to completely remove, including its contents").Required().String()
	ctx.Register(cmd, do)
}

func do(ctx *mansion.Context) {
	ctx.Must(Do(comm.NewStateConsumer(), *args.path))
}

// Do removes path and everything under it, retrying a few times with
// backoff. Windows will sometimes return transient I/O errors for files
// that were just closed; a chmod sweep plus a short wait usually clears
// them.
func Do(consumer *state.Consumer, path string) error {
	attempt := 0
	sleepPatterns := []time.Duration{
		time.Millisecond * 200,
		time.Millisecond * 400,
		time.Millisecond * 800,
		time.Millisecond * 1600,
	}

	for attempt <= len(sleepPatterns) {
		err := Try(consumer, path)
		if err == nil {
			break
		}

		if attempt == len(sleepPatterns) {
			return errors.Wrapf(err, "could not wipe %s", path)
		}
		consumer.Warnf("Could not wipe %s, will retry: %s", path, err.Error())

		err = tryChmod(path)
		if err != nil {
			consumer.Warnf("While bruteforcing: %s", err.Error())
		}

		time.Sleep(sleepPatterns[attempt])
		attempt++
	}

	return nil
}

func Try(consumer *state.Consumer, path string) error {
	consumer.Debugf("rm -rf %s", path)
	return os.RemoveAll(path)
}

func tryChmod(path string) error {
	chmodAll := func(childpath string, f os.FileInfo, err error) error {
		if err != nil {
			// ignore walking errors
			return nil
		}

		// don't ignore chmodding errors
		return os.Chmod(childpath, os.FileMode(0777))
	}

	return filepath.Walk(path, chmodAll)
}
