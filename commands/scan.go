package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"unbind/catalog"
	"unbind/state"
)

// Scan refreshes the catalog from the configured library roots or from
// explicitly requested paths.
func Scan(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("scan")

	roots := cmd.Args().Slice()
	if len(roots) == 0 {
		roots = env.Cfg.Library.Roots
	}
	if len(roots) == 0 {
		return errors.New("no library roots have been specified or configured")
	}
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("unable to resolve library root %q: %w", root, err)
		}
		roots[i] = abs
	}

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	scanner := catalog.NewScanner(store, env.Cfg.Library.CoversPath, env.Log)

	log.Info("Scan starting", zap.Strings("roots", roots))
	start := time.Now()

	res, err := scanner.Scan(ctx, roots)
	if err != nil {
		return fmt.Errorf("unable to scan library: %w", err)
	}

	log.Info("Scan completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("containers", res.Containers),
		zap.Int("catalogued", res.Catalogued),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("failures", res.Failures))

	// Store refreshed catalog for debugging
	if env.Rpt != nil {
		env.Rpt.Store("catalog"+filepath.Ext(env.Cfg.Library.CatalogPath), env.Cfg.Library.CatalogPath)
	}
	return nil
}
