package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"unbind/service"
	"unbind/state"
)

// Extract materializes a virtual book through the extraction cache and
// copies it into the output directory under the configured name template.
func Extract(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	id, err := virtualBookID(cmd, log)
	if err != nil {
		return err
	}

	dst := cmd.String("output")
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	env.OutputDir, env.Overwrite = dst, cmd.Bool("overwrite")

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	vb, err := store.VirtualBookByID(id)
	if err != nil {
		return fmt.Errorf("unable to resolve virtual book: %w", err)
	}
	om, err := store.OmnibusByID(vb.OmnibusID)
	if err != nil {
		return fmt.Errorf("unable to resolve omnibus: %w", err)
	}

	log.Info("Extraction starting", zap.String("id", id), zap.String("title", vb.Title), zap.String("from", om.Path))
	start := time.Now()

	res, err := newService(env, store).Content(ctx, id)
	if err != nil {
		return fmt.Errorf("unable to extract virtual book: %w", err)
	}

	outputName := buildOutputPath(vb, om, env.OutputDir, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := copyResource(res, outputName); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store extraction result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", id, filepath.Ext(outputName)), outputName)
	}

	log.Info("Extraction completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	return nil
}

func copyResource(res *service.Resource, dst string) (err error) {
	r, err := res.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if er := w.Close(); er != nil && err == nil {
			err = er
		}
	}()

	_, err = io.Copy(w, r)
	return
}
