package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fernwehlabs/sift/internal/memory"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive training session",
	Long: `Starts an interactive loop for scoring, labeling, and querying the
classifier. The memory snapshot is saved after every mutating command and
again on exit.

Commands:
  score <text>                  score text without training
  safe <category> <text>        label text safe and train
  bad <category> <text>         label text unsafe and train
  decide <category> <text>      let the classifier decide on its own
  force-safe <category> <text>  store regardless of the ban line
  force-bad <category> <text>   pin as unsafe regardless of training
  respond <category> <prompt>   find the closest allowed item
  list [category]               show allowed items
  save                          write the memory snapshot now
  quit                          save and exit`,
}

func init() {
	replCmd.RunE = runRepl
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cmd.Printf("sift %s interactive session. Type 'help' for commands, 'quit' to exit.\n", version)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "quit", "exit":
			saveQuiet(cmd, ctx, a)
			return scanner.Err()

		case "help":
			cmd.Println(replCmd.Long)

		case "score":
			if rest == "" {
				cmd.Println("usage: score <text>")
				continue
			}
			score := a.classifier.Score(ctx, rest)
			verdict := "allowed"
			if score >= a.classifier.BanThreshold() {
				verdict = "banned"
			}
			cmd.Printf("%.4f (%s)\n", score, verdict)

		case "safe", "bad":
			category, text, ok := splitCategoryArg(rest)
			if !ok {
				cmd.Printf("usage: %s <category> <text>\n", verb)
				continue
			}
			res, err := a.classifier.SetLabel(ctx, text, verb == "safe", category)
			if err != nil {
				cmd.PrintErrf("error: %v\n", err)
				continue
			}
			if res.Stored {
				cmd.Printf("stored at %.4f\n", res.Score)
			} else {
				cmd.Printf("trained to %.4f, not stored\n", res.Score)
			}
			saveQuiet(cmd, ctx, a)

		case "decide":
			category, text, ok := splitCategoryArg(rest)
			if !ok {
				cmd.Println("usage: decide <category> <text>")
				continue
			}
			d, err := a.classifier.Decide(ctx, text, category)
			if err != nil {
				cmd.PrintErrf("error: %v\n", err)
				continue
			}
			if d.Safe {
				cmd.Printf("accepted at %.4f\n", d.Score)
			} else {
				cmd.Printf("rejected at %.4f\n", d.Score)
			}
			saveQuiet(cmd, ctx, a)

		case "force-safe", "force-bad":
			category, text, ok := splitCategoryArg(rest)
			if !ok {
				cmd.Printf("usage: %s <category> <text>\n", verb)
				continue
			}
			if err := a.classifier.AddItem(ctx, text, verb == "force-safe", category); err != nil {
				cmd.PrintErrf("error: %v\n", err)
				continue
			}
			cmd.Println("done")
			saveQuiet(cmd, ctx, a)

		case "respond":
			category, prompt, ok := splitCategoryArg(rest)
			if !ok {
				cmd.Println("usage: respond <category> <prompt>")
				continue
			}
			match, found, err := a.classifier.Respond(ctx, prompt, category)
			if err != nil {
				cmd.PrintErrf("error: %v\n", err)
				continue
			}
			if found {
				cmd.Println(match)
			} else {
				cmd.Println("no match")
			}

		case "list":
			categories := memory.Categories
			if rest != "" {
				cat, err := memory.ParseCategory(rest)
				if err != nil {
					cmd.PrintErrf("error: %v\n", err)
					continue
				}
				categories = []memory.Category{cat}
			}
			for _, cat := range categories {
				items, err := a.classifier.Items(ctx, string(cat))
				if err != nil {
					cmd.PrintErrf("error: %v\n", err)
					continue
				}
				cmd.Printf("%s (%d):\n", cat, len(items))
				for _, item := range items {
					cmd.Printf("  %s\n", item)
				}
			}

		case "save":
			if err := a.classifier.Save(ctx); err != nil {
				cmd.PrintErrf("save failed: %v\n", err)
			} else {
				cmd.Println("saved")
			}

		default:
			cmd.Printf("unknown command %q, type 'help'\n", verb)
		}
	}

	saveQuiet(cmd, ctx, a)
	return scanner.Err()
}

// splitCategoryArg splits "category rest of text" into its two parts.
func splitCategoryArg(s string) (category, text string, ok bool) {
	category, text, found := strings.Cut(s, " ")
	text = strings.TrimSpace(text)
	if !found || text == "" {
		return "", "", false
	}
	return category, text, true
}

// saveQuiet persists the snapshot after a mutation, reporting failure
// without interrupting the session.
func saveQuiet(cmd *cobra.Command, ctx context.Context, a *app) {
	if err := a.classifier.Save(ctx); err != nil {
		cmd.PrintErrf("save failed: %v\n", err)
	}
}
