// Package commands implements unbind subcommand actions on top of the
// catalog, slicer and extraction service packages.
package commands

import (
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"unbind/catalog"
	"unbind/service"
	"unbind/slicer"
	"unbind/state"
)

func openCatalog(env *state.LocalEnv) (*catalog.Store, error) {
	store, err := catalog.Open(env.Cfg.Library.CatalogPath, env.Log)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog: %w", err)
	}
	return store, nil
}

func newService(env *state.LocalEnv, store *catalog.Store) *service.Service {
	return service.New(store, slicer.New(env.Log), env.Cfg.Cache.Path, env.Log)
}

// virtualBookID returns the single id argument required by book-scoped
// subcommands.
func virtualBookID(cmd *cli.Command, log *zap.Logger) (string, error) {
	id := cmd.Args().Get(0)
	if len(id) == 0 {
		return "", errors.New("no virtual book id has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	return id, nil
}
