package commands

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"unbind/state"
)

// Exists reports through exit status whether virtual book content is
// already present in the extraction cache.
func Exists(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("exists")

	id, err := virtualBookID(cmd, log)
	if err != nil {
		return err
	}

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	if !newService(env, store).ContentExists(ctx, id) {
		return fmt.Errorf("virtual book %s is not cached", id)
	}
	log.Info("Virtual book is cached", zap.String("id", id))
	return nil
}
