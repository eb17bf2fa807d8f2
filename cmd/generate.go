package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/confgen/confgen/internal/assets"
	"github.com/confgen/confgen/internal/cards"
	"github.com/confgen/confgen/internal/pages"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"g"},
	Short:   "Generate session pages and social cards",
	Long: `Generate all static artifacts in one run: social cards first, then
session pages, so each page links its own card image.

Examples:
  confgen generate                # Generate everything
  confgen generate --pages-out out/sessions --cards-out out/social`,
	RunE: runGenerate,
}

var (
	generatePagesOut string
	generateCardsOut string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generatePagesOut, "pages-out", "", "Override pages output directory")
	generateCmd.Flags().StringVar(&generateCardsOut, "cards-out", "", "Override cards output directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	ctx := cmd.Context()

	rt, err := setupRuntime(ctx)
	if err != nil {
		return err
	}
	if generatePagesOut != "" {
		rt.cfg.Output.Pages = generatePagesOut
	}
	if generateCardsOut != "" {
		rt.cfg.Output.Cards = generateCardsOut
	}

	sessions := rt.sessions.All()
	fmt.Printf("🔨 Generating artifacts for %d sessions...\n", len(sessions))

	photos, err := assets.NewPhotoStore(&rt.cfg.Cards, rt.logger)
	if err != nil {
		return err
	}

	cardGen, err := cards.New(rt.cfg, rt.speakers, photos, rt.logger, rt.collector)
	if err != nil {
		return err
	}
	cardResult, err := cardGen.GenerateAll(ctx, sessions)
	if err != nil {
		return fmt.Errorf("failed to generate cards: %w", err)
	}

	pageGen, err := pages.New(rt.cfg, rt.speakers, rt.logger, rt.collector)
	if err != nil {
		return err
	}
	pageResult, err := pageGen.GenerateAll(ctx, sessions)
	if err != nil {
		return fmt.Errorf("failed to generate pages: %w", err)
	}

	rt.printSkipped()

	duration := time.Since(startTime)
	fmt.Printf("✅ Generation completed in %v\n", duration)
	fmt.Printf("   - %d pages written to: %s\n", pageResult.Generated, rt.cfg.Output.Pages)
	fmt.Printf("   - %d cards written to: %s\n", cardResult.Generated, rt.cfg.Output.Cards)

	return nil
}
