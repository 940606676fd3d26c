package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"unbind/state"
)

// Content streams extracted virtual book content to STDOUT or to a file.
func Content(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("content")

	id, err := virtualBookID(cmd, log)
	if err != nil {
		return err
	}

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := newService(env, store).Content(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to extract virtual book: %w", err)
	}

	fname := cmd.String("output")

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	r, err := res.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	log.Info("Writing content", zap.String("id", id), zap.String("file", fname), zap.Int64("size", res.Size))

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("unable to write content: %w", err)
	}
	return nil
}
