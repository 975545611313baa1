package main

import (
	"fmt"
	"os"

	"github.com/cursorwatch/cursorwatch/pkg/mcp"
)

func main() {
	apiURL := os.Getenv("CURSORWATCH_ENDPOINT")

	s := mcp.NewServer(apiURL)
	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
