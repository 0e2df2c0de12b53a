package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/origami-service/origami"
	"github.com/origami-service/origami/middlewares"
)

type serveFlags struct {
	port                int
	env                 string
	basePath            string
	logFormat           string
	exposeErrorEndpoint bool
	envFile             string
	name                string
	systemCode          string
	cacheMaxAge         string
	purgeURLs           []string
	purgePath           string
	shutdownTimeout     time.Duration
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the current directory as an origami service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildOptions(cmd.Flags(), f)
			if err != nil {
				return err
			}
			app, err := origami.New(opts...)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), origami.ShutdownTimeout(f.shutdownTimeout))
		},
	}

	bindServeFlags(cmd.Flags(), f)
	return cmd
}

func bindServeFlags(fs *pflag.FlagSet, f *serveFlags) {
	fs.IntVarP(&f.port, "port", "p", 0, "port to listen on (env PORT, default 8080)")
	fs.StringVar(&f.env, "env", "", "environment name (env NODE_ENV or ENVIRONMENT, default development)")
	fs.StringVar(&f.basePath, "base-path", "", "directory holding public/, views/ and manifest.yaml (default working directory)")
	fs.StringVar(&f.logFormat, "log-format", "", "request log format: combined, common, short, tiny, dev or empty to disable")
	fs.BoolVar(&f.exposeErrorEndpoint, "expose-error-endpoint", false, "mount /__error (env EXPOSE_ERROR_ENDPOINT)")
	fs.StringVar(&f.envFile, "env-file", "", "read environment variables from this file first")
	fs.StringVar(&f.name, "name", "", "service name reported on /__about")
	fs.StringVar(&f.systemCode, "system-code", "", "system code reported on /__about and /__health")
	fs.StringVar(&f.cacheMaxAge, "cache-max-age", "", `Cache-Control max-age for handler routes, e.g. "1 hour"`)
	fs.StringSliceVar(&f.purgeURLs, "purge-url", nil, "URL purged from Fastly by the purge endpoint (repeatable)")
	fs.StringVar(&f.purgePath, "purge-path", "/purge", "path of the purge endpoint")
	fs.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 30*time.Second, "graceful shutdown limit")
}

// buildOptions turns the flags that were set into explicit options, leaving
// the rest to the environment and defaults.
func buildOptions(fs *pflag.FlagSet, f *serveFlags) ([]origami.Option, error) {
	var opts []origami.Option

	if f.envFile != "" {
		vars, err := environment(f.envFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, origami.WithEnvironmentVariables(vars))
	}

	if fs.Changed("port") {
		opts = append(opts, origami.WithPort(f.port))
	}
	if fs.Changed("env") {
		opts = append(opts, origami.WithEnvironment(f.env))
	}
	if fs.Changed("base-path") {
		opts = append(opts, origami.WithBasePath(f.basePath))
	}
	if fs.Changed("log-format") {
		opts = append(opts, origami.WithRequestLogFormat(f.logFormat))
	}
	if fs.Changed("expose-error-endpoint") {
		opts = append(opts, origami.WithExposeErrorEndpoint(f.exposeErrorEndpoint))
	}
	if f.name != "" || f.systemCode != "" {
		opts = append(opts, origami.WithAbout(origami.About{Name: f.name, SystemCode: f.systemCode}))
	}

	if f.cacheMaxAge != "" {
		mw, err := middlewares.Build("cache-control", middlewares.Params{"maxAge": f.cacheMaxAge})
		if err != nil {
			return nil, fmt.Errorf("--cache-max-age: %w", err)
		}
		opts = append(opts, origami.WithMiddleware(mw))
	}

	if len(f.purgeURLs) > 0 {
		mw, err := middlewares.Build("purge-urls", middlewares.Params{"urls": strings.Join(f.purgeURLs, ",")})
		if err != nil {
			return nil, fmt.Errorf("--purge-url: %w", err)
		}
		path := f.purgePath
		opts = append(opts, origami.WithHandlers(routes(func(r origami.Router) {
			r.POST(path, nil, mw)
		})))
	}

	return opts, nil
}

// environment merges the env file under the process environment, which
// wins on conflicts.
func environment(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}

type routes func(r origami.Router)

func (f routes) Routes(r origami.Router) { f(r) }
