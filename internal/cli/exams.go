package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

func newExamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exams",
		Aliases: []string{"exam"},
		Short:   "Manage exams",
	}
	cmd.AddCommand(
		newExamsListCmd(),
		newExamsShowCmd(),
		newExamsFindCmd(),
		newExamsCreateCmd(),
		newExamsUpdateCmd(),
		newExamsDeleteCmd(),
	)
	return cmd
}

func printExams(w io.Writer, exams []model.Exam) {
	if len(exams) == 0 {
		fmt.Fprintln(w, "No exams found.")
		return
	}
	fmt.Fprintf(w, "%-26s  %-32s  %s\n", "ID", "TITLE", "CREATED")
	fmt.Fprintf(w, "%-26s  %-32s  %s\n", "--", "-----", "-------")
	for _, e := range exams {
		fmt.Fprintf(w, "%-26s  %-32s  %s\n", e.Key(), e.Title, ago(e.CreatedAt))
	}
}

func newExamsListCmd() *cobra.Command {
	var (
		page   int
		sortBy string
		filter string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exams",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			var key listing.SortKey
			if sortBy != "" {
				k, ok := listing.ParseSortKey(sortBy)
				if !ok {
					return fmt.Errorf("unknown sort %q (use title or date)", sortBy)
				}
				key = k
			}

			exams := traceList(listing.NewExams(client, cfg.PageSize, logger))
			st, err := exams.SetPage(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("error fetching exams: %w", err)
			}
			if filter != "" {
				if st, err = exams.Search(cmd.Context(), filter); err != nil {
					return err
				}
			}
			if key != "" {
				st = exams.Sort(listing.ExamOrder(key))
			}

			out := cmd.OutOrStdout()
			printExams(out, st.Items)
			printShowing(out, st.Pagination)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort the page by title or date")
	cmd.Flags().StringVar(&filter, "filter", "", "Only show exams whose title or description contains this text")
	return cmd
}

func newExamsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an exam and its questions",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			exam, err := client.GetExam(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error fetching exam details: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Exam: %s\n", exam.Title)
			fmt.Fprintf(w, "  ID:          %s\n", exam.Key())
			fmt.Fprintf(w, "  Description: %s\n", orDash(exam.Description))
			fmt.Fprintf(w, "  Created:     %s\n", ago(exam.CreatedAt))
			fmt.Fprintf(w, "  Questions:   %d\n", len(exam.Questions))
			for i, q := range exam.Questions {
				fmt.Fprintf(w, "\n  %d. %s\n", i+1, q.QuestionText)
				for _, o := range q.Options {
					mark := " "
					if o == q.CorrectAnswer {
						mark = "*"
					}
					fmt.Fprintf(w, "     %s %s\n", mark, o)
				}
			}
			return nil
		}),
	}
}

func newExamsFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Search exams by name on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			exams, err := client.SearchExams(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("search exams: %w", err)
			}
			printExams(cmd.OutOrStdout(), exams)
			return nil
		}),
	}
}

func newExamsCreateCmd() *cobra.Command {
	var in model.ExamInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an exam",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			if err := client.CreateExam(cmd.Context(), in); err != nil {
				return fmt.Errorf("error creating exam: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exam created successfully")
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Exam title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Exam description")
	return cmd
}

func newExamsUpdateCmd() *cobra.Command {
	var in model.ExamInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an exam's title and description",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := client.GetExam(ctx, args[0])
			if err != nil {
				return fmt.Errorf("error fetching exam details: %w", err)
			}
			upd := model.ExamInput{Title: cur.Title, Description: cur.Description}
			if cmd.Flags().Changed("title") {
				upd.Title = in.Title
			}
			if cmd.Flags().Changed("description") {
				upd.Description = in.Description
			}
			if err := client.UpdateExam(ctx, args[0], upd); err != nil {
				return fmt.Errorf("error updating exam: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exam updated successfully")
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Exam title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Exam description")
	return cmd
}

func newExamsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an exam",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			exams := listing.NewExams(client, cfg.PageSize, logger)
			if _, err := exams.DeleteItem(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting exam: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exam deleted successfully")
			return nil
		}),
	}
}
