package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"slama/pkg/browser"
	"slama/pkg/config"
	"slama/pkg/resource"
	"slama/pkg/text"
)

var version = "dev"

// cli holds state shared by every command.
type cli struct {
	logger     *log.Logger
	cfg        config.Config
	configPath string
	verbose    bool
}

func newCLI(logOut io.Writer) *cli {
	return &cli{
		logger: newLogger(logOut, log.InfoLevel),
		cfg:    config.Default(),
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "slama",
		Short:        "slama fetches, lays out and draws simple web pages",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetVersionTemplate("slama {{.Version}}\n")

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.tokensCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.linksCommand())
	root.AddCommand(c.viewCommand())

	return root
}

// setup loads the config file and attaches the logger to the command context.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.logger.SetLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.logger))
	return nil
}

// addViewportFlags binds --width and --height, defaulting to the config.
func (c *cli) addViewportFlags(cmd *cobra.Command, width, height *int) {
	cmd.Flags().IntVarP(width, "width", "W", 0, "viewport width in pixels (default from config)")
	cmd.Flags().IntVarP(height, "height", "H", 0, "viewport height in pixels (default from config)")
}

// newBrowser builds a page host at the configured size, overridden by
// non-zero width and height.
func (c *cli) newBrowser(ctx context.Context, width, height int) (*browser.Browser, error) {
	cfg := c.cfg
	if width > 0 {
		cfg.Width = width
	}
	if height > 0 {
		cfg.Height = height
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fonts := text.NewCache(text.NewFaceProvider(cfg.Fonts))
	return browser.New(cfg, fonts, resource.NewFetcher(), loggerFromContext(ctx)), nil
}

// fetch retrieves the source text of rawURL.
func fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := resource.ParseURL(rawURL)
	if err != nil {
		return "", err
	}
	return resource.NewFetcher().Fetch(ctx, u)
}
