package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the data files without generating output",
	Long: `Validate the session and speaker data files against their JSON
Schemas and per-record requirements, and report every problem found.

The command exits non-zero when any record would be skipped during
generation, making it suitable as a pre-publish check in CI.

Examples:
  confgen validate                # Validate the configured data files`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	rt, err := setupRuntime(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("🔍 Validated %d sessions and %d speakers\n",
		rt.loaded.SessionsLoaded+rt.loaded.SessionsSkipped,
		rt.loaded.SpeakersLoaded+rt.loaded.SpeakersSkipped)

	if rt.collector.HasErrors() {
		rt.printSkipped()
		return fmt.Errorf("%d record(s) would be skipped during generation", rt.collector.Count())
	}

	fmt.Println("✅ All records are valid")
	return nil
}
