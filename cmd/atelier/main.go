// Package main provides the atelier CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/atelierhq/atelier/cli"
	"github.com/atelierhq/atelier/internal/logging"
)

var (
	// Global flags
	provider string
	user     string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "atelier",
		Short: "AI studio in the terminal: chat, imagery, speech, search",
		Long: `Atelier is a terminal studio for working with generative models.

Chat keeps durable per-user history; generated images live in a
gallery backed by object storage. Run 'atelier setup' once to
provision the history schema, or chat without it and start fresh
each time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(verbose)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Chat provider (gemini, openai, anthropic)")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "User whose history and gallery to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(imagineCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(sayCmd())
	rootCmd.AddCommand(transcribeCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(galleryCmd())
	rootCmd.AddCommand(setupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		User:     user,
		Verbose:  verbose,
	}
}

func chatCmd() *cobra.Command {
	var knowledgePath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session with durable history",
		Long: `Start an interactive chat session.

History is loaded from the configured store at startup and every
exchange is persisted back. If the schema has not been provisioned
(see 'atelier setup'), the session starts fresh and says so.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunChat(context.Background(), knowledgePath, options())
		},
	}

	cmd.Flags().StringVarP(&knowledgePath, "knowledge", "k", "", "File (.txt, .md, .pdf) loaded as the system instruction")

	return cmd
}

func imagineCmd() *cobra.Command {
	var outPath string
	var save bool

	cmd := &cobra.Command{
		Use:   "imagine [prompt]",
		Short: "Generate an image from a text prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunImagine(context.Background(), args[0], outPath, save, options())
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default imagine-<timestamp>.png)")
	cmd.Flags().BoolVar(&save, "save", false, "Also store the image in the gallery")

	return cmd
}

func editCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "edit [image] [instruction]",
		Short: "Rewrite an image per an instruction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunEdit(context.Background(), args[0], args[1], outPath, options())
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default <image>-edited.<ext>)")

	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [image] [question]",
		Short: "Describe an image, or answer a question about it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := ""
			if len(args) == 2 {
				prompt = args[1]
			}
			return cli.RunAnalyze(context.Background(), args[0], prompt, options())
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Answer a query grounded in live web results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSearch(context.Background(), args[0], options())
		},
	}
}

func sayCmd() *cobra.Command {
	var voice string
	var outPath string

	cmd := &cobra.Command{
		Use:   "say [text]",
		Short: "Synthesize speech from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSay(context.Background(), args[0], voice, outPath, options())
		},
	}

	cmd.Flags().StringVar(&voice, "voice", "", "Voice name (gemini engine only)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default say-<timestamp>.wav)")

	return cmd
}

func transcribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe [audio]",
		Short: "Transcribe an audio file to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunTranscribe(context.Background(), args[0], options())
		},
	}
}

func solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [task]",
		Short: "Work through a long-form problem with extended reasoning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSolve(context.Background(), args[0], options())
		},
	}
}

func galleryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage the image gallery",
	}

	cmd.AddCommand(galleryListCmd())
	cmd.AddCommand(galleryAddCmd())
	cmd.AddCommand(galleryRemoveCmd())

	return cmd
}

func galleryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List gallery items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGalleryList(context.Background(), options())
		},
	}
}

func galleryAddCmd() *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "add [image]",
		Short: "Store a local image in the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGalleryAdd(context.Background(), args[0], prompt, options())
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt or caption stored with the image")

	return cmd
}

func galleryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [storage-path]",
		Short: "Delete a gallery item by storage path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGalleryRemove(context.Background(), args[0], options())
		},
	}
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Provision the history and gallery schema",
		Long: `Provision the row-store schema for chat history and gallery metadata.

Until this has run, 'atelier chat' starts each session fresh with a
notice that saved conversations are not set up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSetup(context.Background(), options())
		},
	}
}
