package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/societyhub/internal/client/settings"
)

// Settings prints the current settings record as YAML.
func (a *App) Settings(ctx context.Context) error {
	return a.settings.Export(a.out, settings.FormatYAML)
}

// Export writes the settings to a file; the format follows the extension.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("export <file.json|file.yaml>")
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := a.settings.Export(f, settings.FormatFromPath(args[0])); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Settings exported to %s\n", args[0])
	return nil
}

// Import replaces the settings with the contents of a file.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("import <file.json|file.yaml>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.settings.Import(ctx, f, settings.FormatFromPath(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Settings imported from %s\n", args[0])
	return nil
}
