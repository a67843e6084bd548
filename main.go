package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	seed       uint64
	jobs       int
	dryRun     bool
	showLyrics bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lazylip [flags] <file>...",
	Short: "Generate placeholder lyrics and phrases for Rock Band vocal tracks",
	Long: `lazylip rewrites the PART VOCALS track of Rock Band MIDI charts (or the
notes.mid inside .sng packages) so the singer's lips move: phrases are
rebuilt from the BEAT track downbeats and every sung note gets a placeholder
syllable or a "+" continuation. Files are rewritten in place.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("cannot access %s: %w", path, err)
			}
		}

		cfg := DefaultConfig()
		if configPath != "" {
			loaded, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		reports := RunBatch(args, Options{
			Config:     cfg,
			Seed:       seed,
			Jobs:       jobs,
			DryRun:     dryRun,
			ShowLyrics: showLyrics,
			Verbose:    verbose,
		})

		for _, report := range reports {
			if report.Failed() {
				return errBatchFailed
			}
		}
		return nil
	},
}

// errBatchFailed is returned once every file was tried and at least one failed.
// Each failure has already been logged.
var errBatchFailed = errors.New("some files could not be processed")

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML file overriding the default settings")
	flags.Uint64Var(&seed, "seed", 0, "seed for the placeholder syllables (0 picks a random seed)")
	flags.IntVarP(&jobs, "jobs", "j", 1, "number of files processed at the same time")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "rewrite in memory and report without writing any file")
	flags.BoolVar(&showLyrics, "show-lyrics", false, "print the generated lyrics of each phrase")
	flags.BoolVarP(&verbose, "verbose", "v", false, "also log informational diagnostics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBatchFailed) {
			log.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}
