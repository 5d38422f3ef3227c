package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kiesman99/mosaic/pkg/tile"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Convert between coordinates and tile addresses",
	Long: `Convert between coordinates and tile addresses.

Negative coordinates must follow "--" so they are not read as flags:
  mosaic address encode -- -25.3 -48.1`,
}

var addressEncodeCmd = &cobra.Command{
	Use:   "encode LAT LON",
	Short: "Print the address of the tile containing a point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lon, err := parseLatLon(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tile.Encode(lat, lon))
		return nil
	},
}

var addressDecodeCmd = &cobra.Command{
	Use:   "decode ADDRESS",
	Short: "Print the bounds of the tile with the given address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rect, err := tile.Decode(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rect)
		return nil
	},
}

var addressRegionCmd = &cobra.Command{
	Use:   "region LAT LON",
	Short: "Print the region a point belongs to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lon, err := parseLatLon(args)
		if err != nil {
			return err
		}
		size, _ := cmd.Flags().GetInt("size")
		fmt.Fprintln(cmd.OutOrStdout(), tile.RegionOf(lat, lon, size))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.AddCommand(addressEncodeCmd, addressDecodeCmd, addressRegionCmd)

	addressRegionCmd.Flags().Int("size", tile.DefaultRegionSize, "region size in degrees")
}

func parseLatLon(args []string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}
	return lat, lon, nil
}
