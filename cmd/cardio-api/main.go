package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title           Cardio Assist API
// @version         1.0
// @description     Role-gated cardiology assistant: sessions, user directory, conversations, completions and patient intake.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	rootCmd := &cobra.Command{
		Use:          "cardio-api",
		Short:        "Cardiology assistant API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(bootstrapCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
