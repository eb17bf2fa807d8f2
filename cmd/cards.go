package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/confgen/confgen/internal/assets"
	"github.com/confgen/confgen/internal/cards"
)

var cardsCmd = &cobra.Command{
	Use:     "cards",
	Aliases: []string{"c"},
	Short:   "Generate social card images",
	Long: `Generate one fixed-size social sharing image per valid session, plus
the default card used by pages without a session-specific one.

Missing speaker photos fall back to a generated placeholder rather than
failing the record.

Examples:
  confgen cards                   # Generate cards to the configured directory
  confgen cards --output out      # Generate cards to a specific directory`,
	RunE: runCards,
}

var cardsOutput string

func init() {
	rootCmd.AddCommand(cardsCmd)

	cardsCmd.Flags().StringVarP(&cardsOutput, "output", "o", "", "Output directory")
}

func runCards(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	ctx := cmd.Context()

	rt, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	if cardsOutput != "" {
		rt.cfg.Output.Cards = cardsOutput
	}

	sessions := rt.sessions.All()
	fmt.Printf("🖼️  Generating cards for %d sessions...\n", len(sessions))

	photos, err := assets.NewPhotoStore(&rt.cfg.Cards, rt.logger)
	if err != nil {
		return err
	}

	gen, err := cards.New(rt.cfg, rt.speakers, photos, rt.logger, rt.collector)
	if err != nil {
		return err
	}

	result, err := gen.GenerateAll(ctx, sessions)
	if err != nil {
		return fmt.Errorf("failed to generate cards: %w", err)
	}

	rt.printSkipped()

	fmt.Printf("✅ %d cards and default card written to %s in %v\n",
		result.Generated, rt.cfg.Output.Cards, time.Since(startTime))
	return nil
}
