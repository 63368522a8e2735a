package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fernwehlabs/sift/internal/memory"
)

var (
	labelSafe     bool
	labelBad      bool
	labelCategory string

	decideCategory  string
	respondCategory string
)

var scoreCmd = &cobra.Command{
	Use:   "score <text>",
	Short: "Score text without training",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		text := strings.Join(args, " ")
		score := a.classifier.Score(ctx, text)
		verdict := "allowed"
		if score >= a.classifier.BanThreshold() {
			verdict = "banned"
		}
		cmd.Printf("%.4f (%s)\n", score, verdict)
		return nil
	},
}

var labelCmd = &cobra.Command{
	Use:   "label <text>",
	Short: "Label text safe or bad and train on it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if labelSafe == labelBad {
			return fmt.Errorf("exactly one of --safe or --bad is required")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		text := strings.Join(args, " ")
		res, err := a.classifier.SetLabel(ctx, text, labelSafe, labelCategory)
		if err != nil {
			return err
		}
		if res.Stored {
			cmd.Printf("stored at %.4f\n", res.Score)
		} else {
			cmd.Printf("trained to %.4f, not stored\n", res.Score)
		}
		return a.classifier.Save(ctx)
	},
}

var decideCmd = &cobra.Command{
	Use:   "decide <text>",
	Short: "Let the classifier decide whether to keep text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		text := strings.Join(args, " ")
		d, err := a.classifier.Decide(ctx, text, decideCategory)
		if err != nil {
			return err
		}
		if d.Safe {
			cmd.Printf("accepted at %.4f\n", d.Score)
		} else {
			cmd.Printf("rejected at %.4f\n", d.Score)
		}
		return a.classifier.Save(ctx)
	},
}

var respondCmd = &cobra.Command{
	Use:   "respond <prompt>",
	Short: "Find the closest allowed item to a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		prompt := strings.Join(args, " ")
		match, found, err := a.classifier.Respond(ctx, prompt, respondCategory)
		if err != nil {
			return err
		}
		if !found {
			cmd.Println("no match")
			return nil
		}
		cmd.Println(match)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List allowed items, optionally for one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		categories := memory.Categories
		if len(args) == 1 {
			cat, err := memory.ParseCategory(args[0])
			if err != nil {
				return err
			}
			categories = []memory.Category{cat}
		}

		for _, cat := range categories {
			items, err := a.classifier.Items(ctx, string(cat))
			if err != nil {
				return err
			}
			cmd.Printf("%s (%d):\n", cat, len(items))
			for _, item := range items {
				cmd.Printf("  %s\n", item)
			}
		}
		return nil
	},
}

func init() {
	labelCmd.Flags().BoolVar(&labelSafe, "safe", false, "label the text as safe")
	labelCmd.Flags().BoolVar(&labelBad, "bad", false, "label the text as unsafe")
	labelCmd.Flags().StringVar(&labelCategory, "category", string(memory.CategoryPhrases),
		"memory category (words, phrases, game_ideas)")

	decideCmd.Flags().StringVar(&decideCategory, "category", string(memory.CategoryPhrases),
		"memory category (words, phrases, game_ideas)")

	respondCmd.Flags().StringVar(&respondCategory, "category", string(memory.CategoryGameIdeas),
		"memory category (words, phrases, game_ideas)")

	rootCmd.AddCommand(scoreCmd, labelCmd, decideCmd, respondCmd, listCmd)
}
