package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"reading-quiz-service/internal/codec"
	"reading-quiz-service/internal/domain"

	"github.com/spf13/cobra"
)

// NewEncodeCmd prints the link payload (or a full link with --base) for a
// quiz JSON file. Use "-" to read stdin.
func NewEncodeCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "encode <quiz.json>",
		Short: "Turn a quiz JSON file into a shareable link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err != nil {
				return fmt.Errorf("parse quiz: %w", err)
			}
			if err := domain.Validate(quiz); err != nil {
				return err
			}
			var out string
			if base != "" {
				out, err = codec.Link(base, quiz)
			} else {
				out, err = codec.Encode(quiz)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "print a full link on this base URL")
	return cmd
}

// NewDecodeCmd prints the quiz carried by a link or bare parameter.
func NewDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <link-or-param>",
		Short: "Show the quiz inside a shared link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiz, err := codec.FromLink(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(quiz)
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
