package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"slama/pkg/visualtest"
)

func (c *cli) renderCommand() *cobra.Command {
	var (
		output        string
		width, height int
		scroll        int
		reference     string
		diffPath      string
	)

	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Draw a page to a PNG file",
		Long: `Fetch a page, lay it out at the viewport width and save the visible
window as a PNG. Accepts http, https, file and data URLs, optionally prefixed
with view-source:.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			b, err := c.newBrowser(ctx, width, height)
			if err != nil {
				return err
			}
			if err := b.Load(ctx, args[0]); err != nil {
				return err
			}
			for b.Scroll() < scroll {
				b.ScrollDown()
			}
			if err := b.SavePNG(output); err != nil {
				return err
			}
			logger.Info("saved", "file", output, "items", len(b.DisplayList()), "title", b.Title())

			if reference == "" {
				return nil
			}
			return compareReference(output, reference, diffPath, logger)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "output.png", "output PNG file path")
	cmd.Flags().StringVar(&reference, "compare", "", "fail unless the output matches this reference PNG")
	cmd.Flags().StringVar(&diffPath, "diff", "", "with --compare, write a diff image here on mismatch")
	cmd.Flags().IntVar(&scroll, "scroll", 0, "scroll down by whole steps until at least this offset")
	c.addViewportFlags(cmd, &width, &height)
	return cmd
}

func compareReference(output, reference, diffPath string, logger *log.Logger) error {
	opts := visualtest.DefaultOptions()
	opts.Diff = diffPath != ""
	res, err := visualtest.CompareFiles(output, reference, opts)
	if err != nil {
		return err
	}
	if res.Match {
		logger.Info("matches reference", "reference", reference)
		return nil
	}
	if res.Diff != nil {
		if err := savePNG(diffPath, res.Diff); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s differs from %s in %d of %d pixels", output, reference, res.DifferentPixels, res.TotalPixels)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return f.Close()
}
