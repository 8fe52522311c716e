package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcanaland/proxymancer/internal/cache"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the card image cache",
	Long:  `Commands for inspecting and clearing the local card image cache.`,
}

// cachePathCmd represents the cache path command
var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cfg.ResolvedCacheDir())
	},
}

// cacheListCmd represents the cache ls command
var cacheListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached card images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(cfg.ResolvedCacheDir(), logger)
		if err != nil {
			return err
		}

		entries, err := c.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No cached images in", c.Dir())
			return nil
		}

		var total int64
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			total += e.Size
			rows = append(rows, []string{e.File, formatSize(e.Size), e.ModTime.Format(time.DateTime)})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Size", "Cached"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
		fmt.Fprintf(out, "%d %s, %s in %s\n", len(entries), plural(len(entries), "image", "images"), formatSize(total), c.Dir())
		return nil
	},
}

// cacheClearCmd represents the cache clear command
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cache.New(cfg.ResolvedCacheDir(), logger)
		if err != nil {
			return err
		}

		removed, err := c.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached %s from %s\n", removed, plural(removed, "image", "images"), c.Dir())
		return nil
	},
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
