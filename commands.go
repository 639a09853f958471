package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"themeplane/content"
	"themeplane/model"
	"themeplane/palette"
	"themeplane/theme"
	"themeplane/ui"
)

// presetPrefix selects a built-in config instead of a file, e.g. preset:current.
const presetPrefix = "preset:"

// loadDescriptor reads a config file, or a built-in preset when arg starts
// with "preset:".
func loadDescriptor(arg string) (model.ThemeConfig, error) {
	if name, ok := strings.CutPrefix(arg, presetPrefix); ok {
		manager, err := theme.NewManager(nil)
		if err != nil {
			return model.ThemeConfig{}, err
		}
		return manager.GetConfig(name)
	}
	cfg, _, err := theme.LoadFile(arg)
	return cfg, err
}

// descriptorDir is the directory content globs are resolved against.
func descriptorDir(arg string) string {
	if strings.HasPrefix(arg, presetPrefix) {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(arg)
}

// basePalette resolves a --base selector: default, none, or another config.
func basePalette(base string) (model.Palette, error) {
	switch base {
	case "", theme.BaseDefault:
		return palette.Default(), nil
	case theme.BaseNone:
		return model.Palette{}, nil
	}
	cfg, err := loadDescriptor(base)
	if err != nil {
		return model.Palette{}, fmt.Errorf("base: %w", err)
	}
	return palette.Resolve(palette.Default(), cfg), nil
}

func writeJSONOut(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---------- validate ----------

type fileReport struct {
	File     string          `json:"file"`
	Valid    bool            `json:"valid"`
	Error    string          `json:"error,omitempty"`
	Problems []theme.Problem `json:"problems"`
}

func newValidateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate theme configs",
		Long:  "Check content globs and color values. Exits non-zero when any config has an error.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			reports := make([]fileReport, 0, len(args))
			failed := false

			for _, arg := range args {
				fr := fileReport{File: arg, Problems: []theme.Problem{}}
				cfg, err := loadDescriptor(arg)
				if err != nil {
					fr.Error = err.Error()
				} else {
					report := theme.Validate(cfg)
					fr.Valid = !report.HasErrors()
					if report.Problems != nil {
						fr.Problems = report.Problems
					}
				}
				if !fr.Valid {
					failed = true
				}
				reports = append(reports, fr)
			}

			if asJSON {
				if err := writeJSONOut(out, reports); err != nil {
					return err
				}
			} else {
				for _, fr := range reports {
					printFileReport(out, fr)
				}
			}

			if failed {
				return errValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	return cmd
}

func printFileReport(w io.Writer, fr fileReport) {
	switch {
	case fr.Error != "":
		fmt.Fprintf(w, "%s %s: %s\n", ui.Error("FAIL"), fr.File, fr.Error)
		return
	case fr.Valid:
		fmt.Fprintf(w, "%s %s\n", ui.Success("ok  "), fr.File)
	default:
		fmt.Fprintf(w, "%s %s\n", ui.Error("FAIL"), fr.File)
	}
	for i := range fr.Problems {
		p := &fr.Problems[i]
		fmt.Fprintf(w, "     %s %s\n", ui.Severity(string(p.Severity)), p.Error())
	}
}

// ---------- show ----------

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show a config with color swatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDescriptor(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading("%s", args[0]))
			fmt.Fprintln(out)
			fmt.Fprint(out, ui.List("content", cfg.Content))
			if !cfg.Theme.Colors.IsZero() {
				fmt.Fprintln(out)
				fmt.Fprint(out, ui.Palette("theme.colors", cfg.Theme.Colors))
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, ui.Palette("theme.extend.colors", cfg.Theme.Extend.Colors))
			fmt.Fprintln(out)
			fmt.Fprint(out, ui.List("plugins", cfg.Plugins))
			return nil
		},
	}
}

// ---------- resolve / nearest ----------

func newResolveCmd() *cobra.Command {
	var base string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the effective palette",
		Long:  "Apply the config's colors on top of a base palette: default, none, or another config (file or preset:<name>).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDescriptor(args[0])
			if err != nil {
				return err
			}
			basePal, err := basePalette(base)
			if err != nil {
				return err
			}
			resolved := palette.Resolve(basePal, cfg)

			if asJSON {
				return writeJSONOut(cmd.OutOrStdout(), resolved)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.Palette(fmt.Sprintf("%s (base: %s)", args[0], base), resolved))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", theme.BaseDefault, "Base palette: default, none, or a config")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the palette as JSON")
	return cmd
}

func newNearestCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "nearest <file> <color>",
		Short: "Find the palette color closest to a hex value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDescriptor(args[0])
			if err != nil {
				return err
			}
			basePal, err := basePalette(base)
			if err != nil {
				return err
			}
			match, dist, err := palette.Nearest(palette.Resolve(basePal, cfg), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Swatch(match, len(match.Name)), ui.Muted("distance %.4f", dist))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", theme.BaseNone, "Base palette: default, none, or a config")
	return cmd
}

// ---------- convert ----------

func newConvertCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a config between js, json, yaml and toml",
		Long:  "Convert a config. The output format follows the output extension, or --to when writing to stdout (-).",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDescriptor(args[0])
			if err != nil {
				return err
			}

			if args[1] == "-" {
				format, err := theme.ParseFormat(to)
				if err != nil {
					return err
				}
				data, err := theme.Encode(format, cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := theme.SaveFile(args[1], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", ui.Success("wrote"), args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", string(theme.FormatJS), "Output format when writing to stdout")
	return cmd
}

// ---------- files ----------

func newFilesCmd() *cobra.Command {
	var baseDir string
	cmd := &cobra.Command{
		Use:   "files <file>",
		Short: "List files selected by the content globs",
		Long:  "List files matched by the content globs, relative to the config's directory. File contents are not read.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDescriptor(args[0])
			if err != nil {
				return err
			}
			dir := baseDir
			if dir == "" {
				dir = descriptorDir(args[0])
			}
			files, err := content.Match(dir, cfg)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Resolve globs against this directory instead of the config's")
	return cmd
}

// ---------- presets ----------

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "List built-in configs, or print one as tailwind.config.js",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := theme.NewManager(nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				cfg, err := manager.GetConfig(args[0])
				if err != nil {
					return err
				}
				data, err := theme.Encode(theme.FormatJS, cfg)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			for _, info := range manager.ListConfigs() {
				fmt.Fprintf(out, "%-10s %s\n", info.Name, ui.Muted("%d globs, %d colors", info.Globs, info.Colors))
			}
			return nil
		},
	}
}
