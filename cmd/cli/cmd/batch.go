// Package cmd - batch command
package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"distconv/adapters/batch"
	"distconv/core/conversion"
	"distconv/core/output"
	"distconv/internal/config"
)

var (
	batchFormat string
	batchExact  bool
)

// batchCmd converts every request in an HCL batch file
var batchCmd = &cobra.Command{
	Use:   "batch <file.hcl>",
	Short: "Run the conversions listed in an HCL batch file",
	Long: `Run every conversion block of an HCL batch file.

  locals {
    marathon = 26.2188
  }

  defaults {
    to = "kilometers"
  }

  conversion "marathon" {
    value = local.marathon
    from  = "miles"
  }

  conversion "desk" {
    value = 5 * 12
    from  = "inches"
    to    = "centimeters"
  }

Blocks with errors are reported and skipped; the command then exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (cli, json, markdown); default from config")
	batchCmd.Flags().BoolVar(&batchExact, "exact", false, "show decimal results")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	scan, err := batch.NewScanner().ScanFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	errW := newErrWriter(cmd)
	errW.Debug("%s: %d conversions, %d rejected", args[0], len(scan.Requests), len(scan.Errors))

	results := make([]*output.Result, 0, len(scan.Requests))
	for _, req := range scan.Requests {
		r := output.NewResult(req.Name, conversion.NewDistance(req.Value, req.From), req.To)
		if math.IsInf(r.Output.Value, 0) {
			r.Err = fmt.Errorf("result out of range")
		} else if batchExact || cfg.Output.Exact {
			r.WithExact()
		}
		results = append(results, r)
	}

	name := batchFormat
	if name == "" {
		name = cfg.Output.DefaultFormat
	}
	formatter, err := output.DefaultRegistry().Get(name)
	if err != nil {
		return err
	}
	if err := formatter.Render(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	failed := len(scan.Errors)
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if scan.HasErrors() {
		errW.Warning("%d blocks skipped", len(scan.Errors))
		for _, e := range scan.Errors {
			errW.Error("%s", e.Error())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(scan.Requests)+len(scan.Errors))
	}
	return nil
}
