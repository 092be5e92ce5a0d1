package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv merges the given dotenv files (later files win) and exports
// every variable the real environment does not already define. Missing
// files are skipped.
func loadDotEnv(files []string) error {
	merged := make(map[string]string)

	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			merged[k] = v
		}
		slog.Debug("loaded env file", "file", file, "vars", len(values))
	}

	for k, v := range merged {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}

	return nil
}
