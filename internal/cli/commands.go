// Package cli implements the factlens command line: the server and a thin
// client for verifying claims, chatting over transcripts and uploading videos.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/factchecker/factlens/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the factlens command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factlens",
		Short: "Transcript chat and claim verification",
		Long: `factlens transcribes videos, answers questions about transcripts and
verifies claims against web search evidence with a language model.

Environment variables:
  GEMINI_API_KEY     API key for the default Gemini provider
  PORT               Port the server listens on (default: 5000)
  FACTLENS_API_URL   Server URL used by client commands (default: http://localhost:5000)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("api-url", "", "Server URL for client commands (overrides env)")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(VerifyCmd())
	rootCmd.AddCommand(ChatCmd())
	rootCmd.AddCommand(UploadCmd())
	rootCmd.AddCommand(ConfigCmd())

	return rootCmd
}

// VerifyCmd returns the verify command.
func VerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <claim>",
		Short: "Verify a claim against web evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClientWithCmd(cmd)
			result, err := client.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			RenderVerification(cmd.OutOrStdout(), args[0], result)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the raw JSON result")
	return cmd
}

// ChatCmd returns the interactive chat command.
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about a transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("transcript")
			if path == "" {
				return fmt.Errorf("--transcript is required")
			}
			transcript, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			session := NewChatSession(NewAPIClientWithCmd(cmd), string(transcript))
			fmt.Fprintln(cmd.OutOrStdout(), "Ask a question about the transcript (\"exit\" to quit).")
			return session.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("transcript", "t", "", "Path to a transcript text file")
	return cmd
}

// UploadCmd returns the upload command.
func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <video>",
		Short: "Upload a video for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := NewAPIClientWithCmd(cmd).Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video ID:   %s\n", resp.ID)
			fmt.Fprintf(out, "Transcript: %s\n\n", resp.File)
			fmt.Fprintln(out, resp.Transcript)
			return nil
		},
	}
}

// ConfigCmd returns the config command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.GenerateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(initCmd)
	return cmd
}
