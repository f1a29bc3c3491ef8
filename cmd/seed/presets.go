package main

import (
	"fmt"

	"conduit/internal/seed"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range seed.PresetNames(presets) {
			p := presets[name]
			fmt.Fprintf(out, "%-10s users=%d articles/user=%d follows/user=%d favorites/user=%d tags=%d\n",
				name, p.Users, p.ArticlesPerUser, p.FollowsPerUser, p.FavoritesPerUser, len(p.Tags))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
