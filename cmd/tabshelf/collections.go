package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"pkt.systems/pslog"

	"github.com/five82/tabshelf/internal/app"
	"github.com/five82/tabshelf/internal/bulk"
	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/config"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// withStore loads the configured collection store for one command.
func withStore(ctx context.Context, cfgPath string, fn func(*collection.Store) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	store, closer, err := app.OpenStore(ctx, cfg, pslog.Ctx(ctx))
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(store)
}

func newExportCmd(cfgPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write all collections as JSON or YAML (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatJSON && format != formatYAML {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			ctx := cmd.Context()
			return withStore(ctx, *cfgPath, func(store *collection.Store) error {
				var buf bytes.Buffer
				if err := encodeGroups(&buf, store.Groups(), format); err != nil {
					return err
				}
				if len(args) == 0 {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				pslog.Ctx(ctx).Info("collections exported", "path", args[0], "format", format, "collections", collection.CountCollections(store.Groups()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")
	return cmd
}

func encodeGroups(w io.Writer, groups []collection.Group, format string) error {
	if format == formatJSON {
		return collection.Encode(w, groups)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(groups); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// decodeGroups validates an import document. YAML files are converted to
// the JSON shape first so both go through the same validation.
func decodeGroups(path string, raw []byte) ([]collection.Group, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var groups []collection.Group
		if err := yaml.Unmarshal(raw, &groups); err != nil {
			return nil, &collection.ValidationError{Reason: "parse yaml import", Err: err}
		}
		var buf bytes.Buffer
		if err := collection.Encode(&buf, groups); err != nil {
			return nil, err
		}
		raw = buf.Bytes()
	}
	return collection.DecodeBytes(raw)
}

func newImportCmd(cfgPath *string) *cobra.Command {
	var modeName string
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace or append collections from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := collection.ParseImportMode(modeName)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			groups, err := decodeGroups(args[0], raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s: %d groups, %d collections, %d tabs\n", args[0],
				len(groups), collection.CountCollections(groups), collection.CountTabs(groups))
			if !yes {
				if err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Type yes to %s your collections: ", mode)); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			return withStore(ctx, *cfgPath, func(store *collection.Store) error {
				if err := store.Import(ctx, groups, mode); err != nil {
					return err
				}
				pslog.Ctx(ctx).Info("collections imported", "path", args[0], "mode", mode.String(), "collections", collection.CountCollections(groups))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "replace", "replace or append")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks for a typed "yes". Anything else aborts.
func confirm(in io.Reader, out io.Writer, prompt string) error {
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.TrimSpace(strings.ToLower(line)) != "yes" {
		return bulk.ErrAborted
	}
	return nil
}

func newGroupsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Print the group and collection tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), *cfgPath, func(store *collection.Store) error {
				printGroups(cmd.OutOrStdout(), store.Groups())
				return nil
			})
		},
	}
}

func printGroups(w io.Writer, groups []collection.Group) {
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(w, "no groups")
		return
	}
	for gi, g := range groups {
		_, _ = fmt.Fprintf(w, "%d. %s\n", gi+1, g.Name)
		for _, c := range g.Collections {
			_, _ = fmt.Fprintf(w, "   [%d] %s (%d tabs)\n", c.CollectionID, c.Name, len(c.Tabs))
		}
	}
}
