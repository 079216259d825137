// Command tabkit renders tabbed panels from panel files and serves them
// with live tab switching.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gabrielmiguelok/tabkit/internal/config"
	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/nav"
	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

var version = "0.1.0"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	switch args[0] {
	case "render":
		return runRender(args[1:], stdout, stderr)

	case "serve":
		return runServe(ctx, args[1:], stderr)

	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "tabkit v%s\n", version)
		return nil

	case "help", "-h", "--help":
		printUsage(stdout)
		return nil

	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `tabkit v%s

Usage: tabkit <command> [flags]

Commands:
  render       Render a panel file as HTML on stdout
  serve        Serve a panel page with live tab switching
  version      Show version
  help         Show this help

Examples:
  tabkit render -f panel.yaml
  tabkit render -f panel.yaml -pills -fade -active 1
  tabkit serve -f panel.yaml -addr :8080

Settings may be overridden with TABKIT_* environment variables,
for example TABKIT_LOG_LEVEL=debug.
`, version)
}

// renderFlags are the panel overrides shared by render.
type renderFlags struct {
	file   string
	pills  bool
	fade   bool
	active int
	parent string
}

func (f *renderFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "f", "", "panel file (yaml, json or toml)")
	fs.BoolVar(&f.pills, "pills", false, "render as pills instead of tabs")
	fs.BoolVar(&f.fade, "fade", false, "enable the fade transition")
	fs.IntVar(&f.active, "active", 0, "index of the active item")
	fs.StringVar(&f.parent, "parent", "", "parent id for action URLs")
}

// apply copies the flags that were set on the command line into c.
func (f *renderFlags) apply(fs *flag.FlagSet, c *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "pills":
			if f.pills {
				c.Panel.Style = string(nav.Pill)
			} else {
				c.Panel.Style = string(nav.Tab)
			}
		case "fade":
			c.Panel.Fade = f.fade
		case "active":
			c.Panel.Active = f.active
		case "parent":
			c.Panel.ParentID = f.parent
		}
	})
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f renderFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := config.Load(f.file)
	if err != nil {
		return err
	}
	f.apply(fs, &c)
	if err := c.Validate(); err != nil {
		return err
	}

	logger, err := c.Logger(stderr)
	if err != nil {
		return err
	}
	panel, err := newPanel(c, logger)
	if err != nil {
		return err
	}

	if err := panel.RenderTo(stdout, c.Tabbable()); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func newPanel(c config.Config, logger logging.Logger) (*tabbable.Panel, error) {
	urls, err := c.URLFormatter()
	if err != nil {
		return nil, err
	}
	return tabbable.NewPanel(
		tabbable.WithURLFormatter(urls),
		tabbable.WithLogger(logger),
	), nil
}
