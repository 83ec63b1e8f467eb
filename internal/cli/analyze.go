package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depsize/pkg/analyzer"
	"github.com/matzehuels/depsize/pkg/errors"
	"github.com/matzehuels/depsize/pkg/repo"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	configPath     string
	repos          []string
	format         string
	output         string
	refresh        bool
	workers        int
	skipUnresolved bool
	cacheBackend   string
}

// newAnalyzeCmd creates the analyze command.
//
// Defaults come from the config file (or built-in defaults when no file
// exists); flags override config values when set.
func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <groupId:artifactId:version>",
		Short: "Resolve a coordinate's dependency tree and report its total size",
		Long: `Resolve the fully transitive dependency graph of a Maven coordinate and
report the on-disk size of every artifact in it.

Examples:
  depsize analyze org.glassfish.jersey.core:jersey-client:2.27
  depsize analyze -r https://repo1.maven.org/maven2 com.google.guava:guava:32.1.3-jre
  depsize analyze --format svg -o deps.svg org.slf4j:slf4j-api:2.0.9`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalyze(c, &opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/depsize/config.toml)")
	cmd.Flags().StringArrayVarP(&opts.repos, "repo", "r", nil, "repository base URL, repeatable and tried in order (overrides config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, dot, or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent sibling resolutions, 1 = sequential (overrides config)")
	cmd.Flags().BoolVar(&opts.skipUnresolved, "skip-unresolved", false, "warn and drop dependencies with no resolvable version instead of failing")
	cmd.Flags().StringVar(&opts.cacheBackend, "cache", "", "cache backend: file, redis, or none (overrides config)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOpts, coordinate string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if len(opts.repos) > 0 {
		cfg.Repositories = opts.repos
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}
	if cmd.Flags().Changed("skip-unresolved") {
		cfg.SkipUnresolved = opts.skipUnresolved
	}
	if opts.cacheBackend != "" {
		cfg.Cache.Backend = opts.cacheBackend
	}

	backend, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	client := repo.NewClient(repo.Config{
		Repositories: cfg.Repositories,
		Cache:        backend,
		CacheTTL:     cfg.cacheTTL(),
		Refresh:      opts.refresh,
	})

	a := analyzer.New(client, analyzer.Options{
		Workers:        cfg.Workers,
		SkipUnresolved: cfg.SkipUnresolved,
		Logger: func(format string, args ...any) {
			logger.Warnf(format, args...)
		},
	})

	logger.Debugf("Repositories: %s", strings.Join(cfg.Repositories, ", "))
	logger.Infof("Analyzing %s", coordinate)

	var sp *Spinner
	if logger.GetLevel() > charmlog.DebugLevel {
		sp = newSpinner(ctx, "Resolving "+coordinate)
		sp.Start()
	}

	prog := newProgress(logger)
	node, err := a.Analyze(ctx, coordinate)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d artifacts, %d bytes total", node.Count(), node.TotalSize()))

	return writeResult(node, opts.format, opts.output)
}

// writeResult renders the tree in the requested format to path (or stdout).
func writeResult(node *analyzer.Node, format, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch format {
	case "text":
		err = node.Render(out)
	case "dot":
		_, err = io.WriteString(out, analyzer.ToDOT(node))
	case "svg":
		var svg []byte
		if svg, err = analyzer.RenderSVG(analyzer.ToDOT(node)); err == nil {
			_, err = out.Write(svg)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (expected text, dot, or svg)", format)
	}
	if err != nil {
		return err
	}

	if path != "" {
		printSuccess("Wrote %s report to %s", format, path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method, making os.Stdout
// usable as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
