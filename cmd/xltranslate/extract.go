package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/output"
)

func newExtractCmd() *cobra.Command {
	var (
		outputPath   string
		pretty       bool
		mode         string
		sheetsDir    string
		keepFormulas bool
	)

	cmd := &cobra.Command{
		Use:   "extract [input.xlsx]",
		Short: "List the translatable text of a workbook as JSON",
		Long: `Extract collects the text a translation run would send, without calling a
provider, and writes it as JSON together with the chart metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := xltranslate.DefaultOptions()
			if mode != "" {
				m, err := xltranslate.ParseMode(mode)
				if err != nil {
					return err
				}
				opts.Mode = m
			}
			opts.KeepFormulas = keepFormulas
			opts.Logger = newLogger()

			wb, err := xltranslate.Extract(args[0], opts)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}

			if sheetsDir != "" {
				if _, err := output.WriteSheetFiles(wb, sheetsDir, pretty); err != nil {
					return fmt.Errorf("failed to write sheet files: %w", err)
				}
				if outputPath == "" {
					return nil
				}
			}

			data, err := output.ToJSON(wb, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&mode, "mode", "", "Extraction mode: cells, standard, full")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().BoolVar(&keepFormulas, "keep-formulas", false, "Include text produced by formulas")
	return cmd
}
