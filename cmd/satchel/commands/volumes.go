package commands

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"satchel/internal/volume"
)

var volumesJSON bool

func init() {
	rootCmd.AddCommand(volumesCmd)

	volumesCmd.Flags().BoolVar(&volumesJSON, "json", false,
		"output as JSON")
}

var volumesCmd = &cobra.Command{
	Use:   "volumes",
	Short: "List mounted volumes and their labels",
	Long: `List the volumes currently visible to the host, with the label each
one would be matched by. Use this to find the value for
destination.drive_config.drive_name.`,
	Example: `  # Human-readable listing
  satchel volumes

  # Machine-readable listing
  satchel volumes --json`,
	RunE: runVolumes,
}

func runVolumes(cmd *cobra.Command, _ []string) error {
	vols := volume.Host().Volumes()
	w := cmd.OutOrStdout()

	if volumesJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(vols), "encoding volumes")
	}

	if len(vols) == 0 {
		fmt.Fprintln(w, "No volumes found.")
		return nil
	}

	// Configured drive label, when a config is present. Best effort:
	// a broken config should not stop a listing command.
	configured := ""
	if cfg, err := requireConfig(); err == nil {
		configured = cfg.Destination.DriveConfig.DriveName
	}

	width := len("LABEL")
	for _, v := range vols {
		if len(v.Label) > width {
			width = len(v.Label)
		}
	}

	fmt.Fprintf(w, "%s%-*s  %s%s\n", colorBold, width, "LABEL", "ROOT", colorReset)
	for _, v := range vols {
		marker := ""
		if configured != "" && v.Label == configured {
			marker = fmt.Sprintf("  %s✓ configured%s", colorGreen, colorReset)
		}
		fmt.Fprintf(w, "%-*s  %s%s%s%s\n",
			width, v.Label, colorGray, v.Root, colorReset, marker)
	}

	return nil
}
