package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

func newStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "students",
		Aliases: []string{"student"},
		Short:   "Manage students",
	}
	cmd.AddCommand(
		newStudentsListCmd(),
		newStudentsShowCmd(),
		newStudentsFindCmd(),
		newStudentsDeleteCmd(),
		newStudentsUpdateCmd(),
		newStudentsExportCmd(),
		newStudentsAssignCmd(),
	)
	return cmd
}

func printStudents(w io.Writer, st listing.State[model.Student]) {
	if st.NotFound {
		fmt.Fprintln(w, "Student not found.")
		return
	}
	if len(st.Items) == 0 {
		fmt.Fprintln(w, "No students found.")
		return
	}
	fmt.Fprintf(w, "%-26s  %-24s  %-14s  %-12s  %s\n", "ID", "NAME", "REG NO", "COURSE", "ADMITTED")
	fmt.Fprintf(w, "%-26s  %-24s  %-14s  %-12s  %s\n", "--", "----", "------", "------", "--------")
	for _, s := range st.Items {
		fmt.Fprintf(w, "%-26s  %-24s  %-14s  %-12s  %s\n",
			s.Key(), s.Name, s.RegistrationNo, orDash(s.Course), model.FormatDate(s.DateOfAdmission))
	}
	printShowing(w, st.Pagination)
}

func newStudentsListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of students",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			students := traceList(listing.NewStudents(client, cfg.PageSize, logger))
			st, err := students.SetPage(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("failed to fetch students: %w", err)
			}
			printStudents(cmd.OutOrStdout(), st)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func newStudentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a student's profile",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			s, err := client.GetStudent(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get student: %w", err)
			}
			if s == nil {
				return fmt.Errorf("student %s not found", args[0])
			}
			printStudent(cmd.OutOrStdout(), s)
			return nil
		}),
	}
}

func printStudent(w io.Writer, s *model.Student) {
	fmt.Fprintf(w, "Student: %s\n", s.Name)
	fmt.Fprintf(w, "  ID:            %s\n", s.Key())
	fmt.Fprintf(w, "  Registration:  %s\n", s.RegistrationNo)
	fmt.Fprintf(w, "  Course:        %s\n", orDash(s.Course))
	fmt.Fprintf(w, "  Duration:      %s\n", orDash(s.CourseDuration))
	fmt.Fprintf(w, "  Admitted:      %s\n", model.FormatDate(s.DateOfAdmission))
	fmt.Fprintf(w, "  Date of birth: %s\n", model.FormatDate(s.BirthDate()))
	fmt.Fprintf(w, "  Mother:        %s\n", orDash(s.MothersName))
	fmt.Fprintf(w, "  Father:        %s\n", orDash(s.FathersName))
	fmt.Fprintf(w, "  Grade:         %s\n", orDash(s.Grade))
	fmt.Fprintf(w, "  Address:       %s\n", orDash(s.Address))
	if s.ProfilePic != "" {
		fmt.Fprintf(w, "  Profile pic:   %s\n", s.ProfilePic)
	}
	if s.CertificatePic != "" {
		fmt.Fprintf(w, "  Certificate:   %s\n", s.CertificatePic)
	}
}

func newStudentsFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <registration-no>",
		Short: "Look a student up by registration number",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			students := listing.NewStudents(client, cfg.PageSize, logger)
			st, err := students.Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error fetching student: %w", err)
			}
			printStudents(cmd.OutOrStdout(), st)
			return nil
		}),
	}
}

func newStudentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			students := listing.NewStudents(client, cfg.PageSize, logger)
			if _, err := students.DeleteItem(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("error deleting student: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Student deleted successfully")
			return nil
		}),
	}
}

func newStudentsUpdateCmd() *cobra.Command {
	var (
		s                    model.Student
		profile, certificate string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a student's fields and pictures",
		Long:  "Update a student. Unset flags keep their current values; pictures are sent as a multipart upload.",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := client.GetStudent(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get student: %w", err)
			}
			if cur == nil {
				return fmt.Errorf("student %s not found", args[0])
			}
			merged := mergeStudent(*cur, s, cmd)
			upd := model.StudentUpdate{Student: merged, ProfilePicPath: profile, CertificatePicPath: certificate}
			if err := client.UpdateStudent(ctx, args[0], upd); err != nil {
				return fmt.Errorf("error updating student: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Student updated successfully")
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&s.Name, "name", "", "Name")
	f.StringVar(&s.RegistrationNo, "registration-no", "", "Registration number")
	f.StringVar(&s.Course, "course", "", "Course")
	f.StringVar(&s.DateOfAdmission, "date-of-admission", "", "Date of admission (yyyy-mm-dd)")
	f.StringVar(&s.CourseDuration, "course-duration", "", "Course duration")
	f.StringVar(&s.DateOfBirth, "date-of-birth", "", "Date of birth (yyyy-mm-dd)")
	f.StringVar(&s.MothersName, "mothers-name", "", "Mother's name")
	f.StringVar(&s.FathersName, "fathers-name", "", "Father's name")
	f.StringVar(&s.Grade, "grade", "", "Grade")
	f.StringVar(&s.Address, "address", "", "Address")
	f.StringVar(&profile, "profile-pic", "", "Profile picture file")
	f.StringVar(&certificate, "certificate-pic", "", "Certificate picture file")
	return cmd
}

// mergeStudent overlays the fields whose flags were set onto cur.
func mergeStudent(cur, in model.Student, cmd *cobra.Command) model.Student {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &cur.Name, in.Name)
	set("registration-no", &cur.RegistrationNo, in.RegistrationNo)
	set("course", &cur.Course, in.Course)
	set("date-of-admission", &cur.DateOfAdmission, in.DateOfAdmission)
	set("course-duration", &cur.CourseDuration, in.CourseDuration)
	set("date-of-birth", &cur.DateOfBirth, in.DateOfBirth)
	set("mothers-name", &cur.MothersName, in.MothersName)
	set("fathers-name", &cur.FathersName, in.FathersName)
	set("grade", &cur.Grade, in.Grade)
	set("address", &cur.Address, in.Address)
	return cur
}

func newStudentsExportCmd() *cobra.Command {
	var (
		page   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one page of students as CSV",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			students := traceList(listing.NewStudents(client, cfg.PageSize, logger))
			if _, err := students.SetPage(cmd.Context(), page); err != nil {
				return fmt.Errorf("failed to fetch students: %w", err)
			}

			if output == "-" {
				_, err := students.ExportCurrentPage(cmd.OutOrStdout())
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			n, err := students.ExportCurrentPage(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d students to %s\n", n, output)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVarP(&output, "output", "o", listing.StudentExportFile, "Output file (- for stdout)")
	return cmd
}

func newStudentsAssignCmd() *cobra.Command {
	var examID string
	cmd := &cobra.Command{
		Use:   "assign <student-id>",
		Short: "Assign an exam to a student",
		Args:  cobra.ExactArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			a := model.ExamAssignment{StudentID: args[0], ExamID: examID}
			if err := client.AssignExam(cmd.Context(), a); err != nil {
				return fmt.Errorf("error assigning exam: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exam Assigned Successfully")
			return nil
		}),
	}
	cmd.Flags().StringVar(&examID, "exam", "", "Exam id")
	return cmd
}
