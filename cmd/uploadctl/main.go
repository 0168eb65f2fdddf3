package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "uploadctl",
		Short: "Upload one image or PDF to the file upload service",
		Long: `uploadctl fills in the upload form from the terminal: it validates the
file (JPEG, PNG or PDF under 5MB), shows a preview reference, streams the
multipart request with a progress bar and prints where the file was stored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		uploadCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		stop()
		os.Exit(1)
	}
}
