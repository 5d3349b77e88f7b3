package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cratemap/pkg/cache"
	"github.com/matzehuels/cratemap/pkg/config"
)

func newCacheCmd(shared *sharedOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}

	cmd.AddCommand(newCacheInfoCmd(shared))
	cmd.AddCommand(newCacheClearCmd(shared))

	return cmd
}

// resolveCacheDir returns the file cache directory, preferring the
// configured path over the platform default.
func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

func newCacheInfoCmd(shared *sharedOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend and its contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(shared.configPath)
			if err != nil {
				return err
			}

			printKeyValue("backend", cfg.Cache.Backend)
			printKeyValue("ttl", cfg.Cache.TTL.String())

			switch cfg.Cache.Backend {
			case config.BackendRedis:
				printKeyValue("address", cfg.Cache.RedisAddr)
				printDetail("entries are managed by the Redis server")
				return nil
			case config.BackendMongo:
				printKeyValue("uri", cfg.Cache.MongoURI)
				printDetail("entries are managed by the MongoDB server")
				return nil
			case config.BackendNone:
				return nil
			}

			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("resolve cache dir: %w", err)
			}

			entries, size := measureCacheDir(dir)
			printKeyValue("directory", dir)
			printKeyValue("entries", fmt.Sprintf("%d", entries))
			printKeyValue("size", humanBytes(size))
			return nil
		},
	}
}

func newCacheClearCmd(shared *sharedOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all locally cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(shared.configPath)
			if err != nil {
				return err
			}

			if cfg.Cache.Backend == config.BackendRedis || cfg.Cache.Backend == config.BackendMongo {
				printWarning("cache clear only manages the local file cache; flush %s directly", cfg.Cache.Backend)
				return nil
			}

			dir, err := resolveCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("resolve cache dir: %w", err)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return nil // Skip errors, continue walking
				}
				if path == dir {
					return nil
				}
				if !info.IsDir() {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			// Clean up empty subdirectories
			_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || path == dir {
					return nil
				}
				if info.IsDir() {
					os.Remove(path)
				}
				return nil
			})

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func measureCacheDir(dir string) (int, int64) {
	entries := 0
	var size int64
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		entries++
		size += info.Size()
		return nil
	})
	return entries, size
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
