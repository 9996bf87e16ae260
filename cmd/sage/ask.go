package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var showBreakdown bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question about your spending",
		Example: `  sage ask "七月花了多少？"
  sage ask "how much did we spend on food in July?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			question := strings.Join(args, " ")
			answer, err := eng.Answer(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("failed to answer: %w", err)
			}

			cmd.Println(answer.Text)
			cmd.Println(formatConfidence(answer))
			if showBreakdown {
				c := answer.Confidence
				cmd.Printf("  data availability  %.2f\n", c.DataAvailability)
				cmd.Printf("  question clarity   %.2f\n", c.QuestionClarity)
				cmd.Printf("  llm certainty      %.2f\n", c.LLMCertainty)
				cmd.Printf("  guardrail passed   %.2f\n", c.GuardrailPassed)
				cmd.Printf("  response verified  %.2f\n", c.ResponseVerified)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBreakdown, "breakdown", false, "show the confidence component breakdown")
	return cmd
}
