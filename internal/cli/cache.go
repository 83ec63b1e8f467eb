package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newCacheCmd creates the cache management command. Subcommands operate on
// the same file-cache directory the analyze command uses, including a
// cache.dir override from the config file.
func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository response cache",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/depsize/config.toml)")

	cmd.AddCommand(newCacheClearCmd(&configPath))
	cmd.AddCommand(newCachePathCmd(&configPath))

	return cmd
}

// effectiveCacheDir loads the config and returns the file-cache directory
// it selects.
func effectiveCacheDir(configPath string) (string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	return resolveCacheDir(cfg)
}

// newCacheClearCmd creates the "cache clear" subcommand.
// It operates on the file backend's directory; redis-backed caches expire
// through their TTLs.
func newCacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached repository responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := effectiveCacheDir(*configPath)
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == dir || info.IsDir() {
					return nil
				}
				if err := os.Remove(path); err == nil {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := effectiveCacheDir(*configPath)
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}
