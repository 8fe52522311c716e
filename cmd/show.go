package cmd

import (
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/proxymancer/internal/ansiart"
	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/decklist"
	"github.com/arcanaland/proxymancer/internal/imaging"
	"github.com/arcanaland/proxymancer/internal/scryfall"
)

const (
	defaultTermWidth = 80
	maxArtWidth      = 40
)

var showCmd = &cobra.Command{
	Use:   "show [card name]",
	Short: "Preview a card in the terminal",
	Long: `Show resolves a single card the same way the printer does (cache first, then
Scryfall) and draws it as half-block ANSI art next to its details.

Examples:
  proxymancer show Lightning Bolt
  proxymancer show "Sol Ring (CMR) 472"
  proxymancer show --oracle Counterspell`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, ok, err := decklist.ParseEntry(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no card name given")
		}

		flags := cmd.Flags()
		if flags.Changed("fuzzy") {
			cfg.Fuzzy, _ = flags.GetBool("fuzzy")
		}
		noCache, _ := flags.GetBool("no-cache")
		withOracle, _ := flags.GetBool("oracle")
		width, _ := flags.GetInt("width")

		res, err := newResolver(noCache)
		if err != nil {
			return err
		}
		resolved, err := res.Resolve(cmd.Context(), req)
		if err != nil {
			return err
		}

		termWidth := terminalWidth()
		if width <= 0 {
			width = min(maxArtWidth, termWidth/3)
		}

		art, err := ansiart.RenderCard(resolved.Image, width, trueColor())
		if err != nil {
			return fmt.Errorf("error rendering %s: %w", resolved.Name, err)
		}

		info := []string{
			label("Card:   ") + value(resolved.Name),
		}
		if resolved.SetCode != "" {
			info = append(info, label("Set:    ")+value(strings.ToUpper(resolved.SetCode)))
		}
		info = append(info, label("Source: ")+value(string(resolved.Source)))
		if img, err := imaging.Decode(resolved.Image); err == nil {
			b := img.Bounds()
			info = append(info, label("Image:  ")+value(fmt.Sprintf("%d×%d px", b.Dx(), b.Dy())))
		}
		if !noCache {
			c, err := cache.New(cfg.ResolvedCacheDir(), logger)
			if err == nil {
				info = append(info, label("Cache:  ")+value(c.Path(resolved.Key)))
			}
		}

		if withOracle {
			client, err := newClient()
			if err != nil {
				return err
			}
			var details *scryfall.Card
			if req.HasPrinting() {
				details, err = client.Printing(cmd.Context(), req.SetCode, req.CollectorNumber)
			} else {
				details, err = client.Named(cmd.Context(), req.Name, cfg.Fuzzy)
			}
			if err != nil {
				return err
			}
			info = append(info, oracleLines(details, ansiart.InfoWidth(termWidth, width))...)
		}

		return ansiart.SideBySide(cmd.OutOrStdout(), art, info)
	},
}

func oracleLines(c *scryfall.Card, width int) []string {
	var lines []string
	if c.ManaCost != "" {
		lines = append(lines, label("Cost:   ")+value(c.ManaCost))
	}
	if c.TypeLine != "" {
		lines = append(lines, label("Type:   ")+value(c.TypeLine))
	}
	if c.Artist != "" {
		lines = append(lines, label("Artist: ")+value(c.Artist))
	}

	text := c.OracleText
	if text == "" && len(c.CardFaces) > 0 {
		var faces []string
		for _, f := range c.CardFaces {
			faces = append(faces, f.Name+": "+f.OracleText)
		}
		text = strings.Join(faces, " // ")
	}
	if text != "" {
		lines = append(lines, "", label("Text:"))
		for _, paragraph := range strings.Split(text, "\n") {
			lines = append(lines, ansiart.WrapText(paragraph, width)...)
		}
	}
	return lines
}

func label(s string) string {
	return colorize.CyanString(s)
}

func value(s string) string {
	return colorize.HiWhiteString("%s", s)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

func trueColor() bool {
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return true
	}
	return false
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().Int("width", 0, "Width of the preview in columns (default fits the terminal)")
	showCmd.Flags().Bool("oracle", false, "Also fetch and print the card's rules text")
	showCmd.Flags().Bool("fuzzy", false, "Use fuzzy card name matching")
	showCmd.Flags().Bool("no-cache", false, "Neither read nor write the image cache")
}
