package discord

import (
	"os"
	"path/filepath"
	"strings"
)

func commandHashPath(dir, appID, scope string) string {
	return filepath.Join(dir, appID+"-"+scope+".sha1")
}

// loadCommandHash returns the hash saved after the last push, or "".
func loadCommandHash(dir, appID, scope string) string {
	data, err := os.ReadFile(commandHashPath(dir, appID, scope))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveCommandHash(dir, appID, scope, hash string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(commandHashPath(dir, appID, scope), []byte(hash+"\n"), 0o644)
}
