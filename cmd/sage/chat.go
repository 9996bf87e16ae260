package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/budgetsage/budgetsage/internal/cli"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question session with conversation memory",
		Long: `Starts a REPL that remembers recent questions, so follow-ups like
"那娛樂呢？" or "what about August?" resolve against the current topic.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			cmd.Println(cli.FormatSubtle("sage chat — ask about your budget (exit / quit to leave)"))

			reader := cli.NewLineReader(os.Stdin)
			for {
				cmd.Print(cli.Prompt())
				line, err := reader.ReadLine(cmd.Context())
				if err != nil {
					if errors.Is(err, cli.ErrInputCanceled) || errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				answer, err := eng.Answer(cmd.Context(), line)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					cmd.PrintErrln(cli.FormatError("error: " + err.Error()))
					continue
				}
				cmd.Println(cli.FormatAnswer(answer.Text))
				cmd.Println(cli.FormatMeta(formatConfidence(answer), answer.Confidence.Band))
			}
		},
	}
}
