package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docthrows/internal/version"
)

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show docthrows build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Current()
		switch strings.ToLower(versionFormat) {
		case "pretty":
			colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
			line := info.String()
			if useColor(colorFlag) {
				line = strings.Replace(line, info.Version, version.Colored(), 1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
