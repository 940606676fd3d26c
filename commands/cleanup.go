package commands

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"unbind/state"
)

// Cleanup evicts extraction cache entries older than the configured or
// requested age.
func Cleanup(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	maxAge, err := env.Cfg.Cache.MaxAgeDuration()
	if err != nil {
		return fmt.Errorf("invalid cache max_age in configuration: %w", err)
	}
	if cmd.IsSet("max-age") {
		maxAge = cmd.Duration("max-age")
		if maxAge < 0 {
			return errors.New("max-age cannot be negative")
		}
	}

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := newService(env, store).CleanupCache(ctx, maxAge); err != nil {
		return fmt.Errorf("unable to clean extraction cache: %w", err)
	}
	return nil
}
