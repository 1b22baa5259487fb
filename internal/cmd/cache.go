package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jpequegn/polybench/internal/cache"
	"github.com/spf13/cobra"
)

// cacheCmd is the parent command for compile-cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the compile cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print compile cache hit/miss/eviction counters and entry count",
	RunE:  cacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the compile cache",
	RunE:  cacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().String("cache-dir", "", "compile cache directory (default: $POLYBENCH_CACHE_DIR or ./.polybench/cache)")
}

func openCacheFromFlags(cmd *cobra.Command) (*cache.Cache, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = os.Getenv("POLYBENCH_CACHE_DIR")
	}
	if dir == "" {
		dir = ".polybench/cache"
	}
	return cache.New(dir, 500)
}

func cacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCacheFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("failed to open compile cache: %w", err)
	}

	out := map[string]interface{}{
		"size":  c.Size(),
		"stats": c.Stats(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func cacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCacheFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("failed to open compile cache: %w", err)
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear compile cache: %w", err)
	}
	fmt.Fprintln(os.Stderr, "compile cache cleared")
	return nil
}
