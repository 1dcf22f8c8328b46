// Package cmd - convert command
package cmd

import (
	"github.com/spf13/cobra"

	"distconv/core/conversion"
	"distconv/core/input"
	"distconv/core/output"
	"distconv/core/units"
	"distconv/internal/config"
	"distconv/internal/logging"
)

var (
	outputFormat string
	exact        bool
	pretty       bool
	onInvalid    string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <value> <from> <to>",
	Short: "Convert a distance from one unit to another",
	Long: `Convert a distance between any two supported units.

Units may be given by name (meters), symbol (m) or singular name (meter).
Put negative values after "--" so they are not read as flags.

Examples:
  distconv convert 1 in mm
  distconv convert 5280 feet miles
  distconv convert --format json 100 cm m
  distconv convert -- -3 yards meters`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown); default from config")
	convertCmd.Flags().BoolVar(&exact, "exact", false, "show the decimal result instead of the rounded value")
	convertCmd.Flags().BoolVar(&pretty, "pretty", false, "draw the result in a box (cli format only)")
	convertCmd.Flags().StringVar(&onInvalid, "on-invalid", "", "what to do with a non-numeric value: reject or zero; default from config")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	value, err := input.ParseValue(args[0], policy)
	if err != nil {
		return err
	}
	from, err := units.ParseUnit(args[1])
	if err != nil {
		return err
	}
	to, err := units.ParseUnit(args[2])
	if err != nil {
		return err
	}

	result := output.NewResult("", conversion.NewDistance(value, from), to)
	if exact || cfg.Output.Exact {
		result.WithExact()
	}

	logging.Debug("converted",
		logging.Unit("from", from), logging.Unit("to", to),
		logging.Value(value), logging.Result(result.Output.Value))

	formatter, err := resolveFormatter(cfg)
	if err != nil {
		return err
	}
	if pretty && formatter.Format() == output.FormatCLI {
		newWriter(cmd).ConversionCard(result)
		return nil
	}
	return formatter.Render(cmd.OutOrStdout(), []*output.Result{result})
}

func resolvePolicy(cfg *config.Config) (input.Policy, error) {
	if onInvalid != "" {
		return input.ParsePolicy(onInvalid)
	}
	return input.ParsePolicy(string(cfg.Input.OnInvalid))
}

func resolveFormatter(cfg *config.Config) (output.Formatter, error) {
	name := outputFormat
	if name == "" {
		name = cfg.Output.DefaultFormat
	}
	return output.DefaultRegistry().Get(name)
}
