package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/examdesk/pkg/model"
)

func newQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"question"},
		Short:   "Add questions to exams",
	}
	cmd.AddCommand(newQuestionsCreateCmd(), newQuestionsImportCmd())
	return cmd
}

func newQuestionsCreateCmd() *cobra.Command {
	var q model.Question
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a multiple-choice question",
		Long:  "Create a question with exactly four options. The answer must equal one of the options.",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			if err := client.CreateQuestion(cmd.Context(), q); err != nil {
				return fmt.Errorf("error creating question: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Question created successfully")
			return nil
		}),
	}
	cmd.Flags().StringVar(&q.ExamID, "exam", "", "Exam id")
	cmd.Flags().StringVar(&q.QuestionText, "text", "", "Question text")
	cmd.Flags().StringArrayVar(&q.Options, "option", nil, "Answer option (repeat four times)")
	cmd.Flags().StringVar(&q.CorrectAnswer, "answer", "", "Correct answer")
	return cmd
}

func newQuestionsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Bulk-create questions from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			if err := client.ImportQuestions(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error importing questions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Questions imported successfully")
			return nil
		}),
	}
}
