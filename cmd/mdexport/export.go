package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/msgexport/internal/config"
	"github.com/dgallion1/msgexport/internal/pipeline"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/save"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var format string
	var out string
	var tmplPath string
	var upload string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "export [file|-]",
		Short: "Render a markdown message file (or stdin) to a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			content, err := readSource(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			var tmpl *render.Template
			if tmplPath != "" {
				tmpl, err = config.LoadTemplate(tmplPath)
				if err != nil {
					return err
				}
			}

			cfg := config.Load()
			var saver save.Saver
			var location func(string) string
			if upload != "" {
				saver = save.NewHTTPSaver(upload, cfg.UploadAPIKey)
				location = func(name string) string { return strings.TrimRight(upload, "/") + "/" + name }
			} else {
				if out == "" {
					out = cfg.OutputDir
				}
				dir, err := save.NewDirSaver(out)
				if err != nil {
					return err
				}
				saver, location = dir, dir.Path
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelInfo
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			res, err := pipeline.NewOrchestrator(cfg, saver, log).Export(cmd.Context(), content, f, tmpl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location(res.Filename))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "output format: pdf|docx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: $OUTPUT_DIR or ./exports)")
	cmd.Flags().StringVar(&upload, "upload", "", "PUT the document to this base URL instead of writing it (token from $UPLOAD_API_KEY)")
	cmd.Flags().StringVarP(&tmplPath, "template", "t", "", "YAML template file for custom documents")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log render details to stderr")
	return cmd
}

func readSource(stdin io.Reader, src string) (string, error) {
	var data []byte
	var err error
	if src == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	return string(data), nil
}
