// Package cmd - units command
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"distconv/core/units"
)

var unitsJSON bool

// unitsCmd lists supported units
var unitsCmd = &cobra.Command{
	Use:   "units [imperial|metric]",
	Short: "List supported units",
	Long: `List the supported units of one measurement system, or of both.

Units are listed in display order with their symbol and size in millimeters.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"imperial", "metric"},
	RunE:      runUnits,
}

func init() {
	unitsCmd.Flags().BoolVar(&unitsJSON, "json", false, "print unit names as a JSON object keyed by system")
}

func runUnits(cmd *cobra.Command, args []string) error {
	systems := units.Systems()
	if len(args) == 1 {
		sys, err := units.ParseSystem(args[0])
		if err != nil {
			return err
		}
		systems = []units.MeasurementSystem{sys}
	}

	if unitsJSON {
		out := make(map[string][]units.DistanceUnit, len(systems))
		for _, sys := range systems {
			out[sys.String()] = units.For(sys)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	newWriter(cmd).UnitCatalog(systems...)
	return nil
}
