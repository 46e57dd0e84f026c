package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "voxgate",
		Short: "Telegram media transcription gateway",
		Long:  "voxgate receives voice, audio and video from Telegram, transcribes it through Groq Whisper and delivers the text back in chat or as a file.",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the status server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
