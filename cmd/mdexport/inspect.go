package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/msgexport/internal/inspect"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var pdftotext bool
	var showText bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize an exported PDF or DOCX document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := inspect.ForFile(args[0])
			if err != nil {
				return err
			}
			if p, ok := rd.(*inspect.PDFReader); ok {
				p.FallbackPdftotext = pdftotext
			}
			rep, err := inspect.ReadFile(rd, args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep, showText)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pdftotext, "pdftotext", false, "fall back to the pdftotext binary for PDFs the built-in reader cannot parse")
	cmd.Flags().BoolVar(&showText, "text", false, "print the full document text")
	return cmd
}

func printReport(w io.Writer, rep *inspect.Report, showText bool) {
	fmt.Fprintf(w, "format: %s\n", rep.Format)
	switch rep.Format {
	case "pdf":
		fmt.Fprintf(w, "pages: %d\n", rep.Pages)
	default:
		fmt.Fprintf(w, "paragraphs: %d\n", len(rep.Paragraphs))
		fmt.Fprintf(w, "tables: %d\n", rep.Tables)
		for _, p := range rep.Paragraphs {
			if p.Level > 0 {
				fmt.Fprintf(w, "%s %s\n", strings.Repeat("#", p.Level), p.Text)
			}
		}
		if rep.Footer != "" {
			fmt.Fprintf(w, "footer: %s\n", strings.ReplaceAll(rep.Footer, "\n", " / "))
		}
		if len(rep.FooterFields) > 0 {
			fmt.Fprintf(w, "footer fields: %s\n", strings.Join(rep.FooterFields, ", "))
		}
	}
	if showText {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rep.Text())
	}
}
