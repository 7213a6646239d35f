// Command settoken stores the activity-upload bearer token in the file the
// service reads at startup (UPLOAD_TOKEN_FILE). The token is read from
// stdin so it never appears in shell history or process arguments.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	path := os.Getenv("UPLOAD_TOKEN_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot resolve home directory: %v", err)
		}
		path = filepath.Join(home, ".config", "fittrack", "upload_token")
	}

	fmt.Fprint(os.Stderr, "Enter your upload access token: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("failed to read token: %v", err)
	}

	token := strings.TrimSpace(line)
	if token == "" {
		log.Fatal("no token entered")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		log.Fatalf("failed to create token directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		log.Fatalf("failed to write token: %v", err)
	}

	// Verify the round trip before reporting success.
	saved, err := os.ReadFile(path)
	if err != nil || strings.TrimSpace(string(saved)) != token {
		log.Fatalf("verification failed for %s", path)
	}
	fmt.Fprintf(os.Stderr, "Token saved to %s\n", path)
}
