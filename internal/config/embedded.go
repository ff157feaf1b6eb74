package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

//go:embed env.sample
var configFS embed.FS

// SampleEnv returns the embedded sample .env file
func SampleEnv() []byte {
	data, err := configFS.ReadFile("env.sample")
	if err != nil {
		// The file is embedded at build time
		panic(fmt.Sprintf("reading embedded env.sample: %v", err))
	}
	return data
}

// WriteSampleEnv writes the embedded sample .env file to targetPath.
// An existing file is left alone unless backupExisting is set, in which case
// it is copied to <targetPath>.<date>.bak first. The returned backup path is
// empty when no backup was made.
func WriteSampleEnv(targetPath string, backupExisting bool) (written bool, backupPath string, err error) {
	if _, err := os.Stat(targetPath); err == nil {
		if !backupExisting {
			return false, "", nil
		}

		backupPath = fmt.Sprintf("%s.%s.bak", targetPath, time.Now().Format("2006-01-02"))
		existing, err := os.ReadFile(targetPath)
		if err != nil {
			return false, "", fmt.Errorf("failed to read existing file for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, existing, 0o600); err != nil {
			return false, "", fmt.Errorf("failed to write backup file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return false, "", fmt.Errorf("checking %s: %w", targetPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return false, "", fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds an API key
	if err := os.WriteFile(targetPath, SampleEnv(), 0o600); err != nil {
		return false, "", fmt.Errorf("writing %s: %w", targetPath, err)
	}

	return true, backupPath, nil
}
