package main

import (
	"fmt"
	"os"

	"conduit/internal/config"
	"conduit/internal/database"
	"conduit/internal/seed"

	"github.com/spf13/cobra"
)

var (
	presetFlag      string
	presetsFileFlag string
	usersFlag       int
	articlesFlag    int
	followsFlag     int
	favoritesFlag   int
	cleanFlag       bool
	seedFlag        int64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo users, articles, follows and favorites",
	Long: `seed fills the Conduit database with generated content.

Start from a named preset and override individual counts with flags:

  seed --preset demo --users 40 --clean`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&presetFlag, "preset", "small", "Preset to start from")
	rootCmd.PersistentFlags().StringVar(&presetsFileFlag, "presets-file", "", "YAML file with additional presets")
	rootCmd.Flags().IntVar(&usersFlag, "users", 0, "Number of users (overrides preset)")
	rootCmd.Flags().IntVar(&articlesFlag, "articles", 0, "Articles per user (overrides preset)")
	rootCmd.Flags().IntVar(&followsFlag, "follows", 0, "Follows per user (overrides preset)")
	rootCmd.Flags().IntVar(&favoritesFlag, "favorites", 0, "Favorites per user (overrides preset)")
	rootCmd.Flags().BoolVar(&cleanFlag, "clean", false, "Delete existing data before seeding")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Random seed (0 picks one from the clock)")
}

// loadPresets merges the built-in presets with the optional presets file.
func loadPresets() (map[string]seed.Options, error) {
	presets := seed.DefaultPresets()
	if presetsFileFlag == "" {
		return presets, nil
	}

	f, err := os.Open(presetsFileFlag)
	if err != nil {
		return nil, fmt.Errorf("open presets file: %w", err)
	}
	defer f.Close()

	extra, err := seed.LoadPresets(f)
	if err != nil {
		return nil, err
	}
	for name, opts := range extra {
		presets[name] = opts
	}
	return presets, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	presets, err := loadPresets()
	if err != nil {
		return err
	}
	opts, ok := presets[presetFlag]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %v)", presetFlag, seed.PresetNames(presets))
	}

	flags := cmd.Flags()
	if flags.Changed("users") {
		opts.Users = usersFlag
	}
	if flags.Changed("articles") {
		opts.ArticlesPerUser = articlesFlag
	}
	if flags.Changed("follows") {
		opts.FollowsPerUser = followsFlag
	}
	if flags.Changed("favorites") {
		opts.FavoritesPerUser = favoritesFlag
	}
	if flags.Changed("seed") {
		opts.Seed = seedFlag
	}
	if opts.Users < 0 || opts.ArticlesPerUser < 0 || opts.FollowsPerUser < 0 || opts.FavoritesPerUser < 0 {
		return fmt.Errorf("counts must not be negative")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := cmd.Context()
	s := seed.NewSeeder(db)
	if cleanFlag {
		if err := s.ClearAll(ctx); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	summary, err := s.Run(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %d users, %d articles, %d follows, %d favorites\n",
		summary.Users, summary.Articles, summary.Follows, summary.Favorites)
	password := opts.Password
	if password == "" {
		password = seed.DefaultPassword
	}
	fmt.Fprintf(out, "All seeded users have the password: %s\n", password)
	return nil
}
