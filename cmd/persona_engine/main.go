// Package main provides the entry point for the persona engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "persona_engine",
	Short: "Personality report content personalization engine",
	Long:  "persona_engine applies content-pack override documents and runs tag-gated bucket selection to personalize assessment report content for a user's type, tags, and locale.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
