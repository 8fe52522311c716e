package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/proxymancer/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [decklist]",
	Short: "Check a decklist without downloading anything",
	Long: `Validate parses a decklist (plain text or Moxfield CSV) and reports every
malformed line, plus warnings for entries that parse but look wrong: the same
card listed twice, very large quantities, or a set code without a collector
number. No network requests are made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckPath := args[0]

		if _, err := os.Stat(deckPath); os.IsNotExist(err) {
			return fmt.Errorf("decklist not found: %s", deckPath)
		}

		v := validator.NewValidator(deckPath)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			okColor.Fprintf(out, "✅ '%s' is valid: %d %s, %d cards.\n",
				deckPath, results.Entries, plural(results.Entries, "entry", "entries"), results.Cards)
		} else {
			warnColor.Fprintf(out, "❌ '%s' has %d %s:\n",
				deckPath, len(results.Errors), plural(len(results.Errors), "error", "errors"))
			for i, e := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, e)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
