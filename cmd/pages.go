package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/confgen/confgen/internal/pages"
)

var pagesCmd = &cobra.Command{
	Use:     "pages",
	Aliases: []string{"p"},
	Short:   "Generate session HTML pages",
	Long: `Generate one HTML page per valid session plus the index page, using
the templates from the configured templates directory.

Invalid records (missing required fields) are skipped with a diagnostic and
do not abort the batch.

Examples:
  confgen pages                   # Generate pages to the configured directory
  confgen pages --output out      # Generate pages to a specific directory`,
	RunE: runPages,
}

var pagesOutput string

func init() {
	rootCmd.AddCommand(pagesCmd)

	pagesCmd.Flags().StringVarP(&pagesOutput, "output", "o", "", "Output directory")
}

func runPages(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	ctx := cmd.Context()

	rt, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	if pagesOutput != "" {
		rt.cfg.Output.Pages = pagesOutput
	}

	sessions := rt.sessions.All()
	fmt.Printf("📝 Generating pages for %d sessions...\n", len(sessions))

	gen, err := pages.New(rt.cfg, rt.speakers, rt.logger, rt.collector)
	if err != nil {
		return err
	}

	result, err := gen.GenerateAll(ctx, sessions)
	if err != nil {
		return fmt.Errorf("failed to generate pages: %w", err)
	}

	rt.printSkipped()

	fmt.Printf("✅ %d pages and index written to %s in %v\n",
		result.Generated, rt.cfg.Output.Pages, time.Since(startTime))
	return nil
}
