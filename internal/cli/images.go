package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

func newImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Aliases: []string{"image"},
		Short:   "Manage gallery images",
	}
	cmd.AddCommand(newImagesListCmd(), newImagesDeleteCmd(), newImagesUploadCmd())
	return cmd
}

func newImagesListCmd() *cobra.Command {
	var (
		page     int
		category string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			images := traceList(listing.NewImages(client, cfg.PageSize, logger))
			st, err := images.SetPage(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("error fetching images: %w", err)
			}
			if category != "" {
				if st, err = images.Search(cmd.Context(), category); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if len(st.Items) == 0 {
				fmt.Fprintln(w, "No images found.")
				return nil
			}
			fmt.Fprintf(w, "%-40s  %-16s  %-8s  %s\n", "PUBLIC ID", "CATEGORY", "SIZE", "UPLOADED")
			fmt.Fprintf(w, "%-40s  %-16s  %-8s  %s\n", "---------", "--------", "----", "--------")
			for _, img := range st.Items {
				size := "-"
				if img.Bytes > 0 {
					size = humanize.Bytes(uint64(img.Bytes))
				}
				fmt.Fprintf(w, "%-40s  %-16s  %-8s  %s\n", img.PublicID, img.Category, size, ago(img.CreatedAt))
			}
			printShowing(w, st.Pagination)
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&category, "category", "", "Only show images in this category")
	return cmd
}

func newImagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <public-id>...",
		Short: "Delete one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := client.DeleteImage(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("error deleting image: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Image deleted successfully")
				return nil
			}
			if err := client.DeleteImages(cmd.Context(), args); err != nil {
				return fmt.Errorf("error deleting images: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d images deleted successfully\n", len(args))
			return nil
		}),
	}
}

func newImagesUploadCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload images into a category",
		Long:  "Upload JPEG or PNG images into a gallery category.",
		RunE: protected(func(cmd *cobra.Command, args []string) error {
			msg, err := client.UploadImages(cmd.Context(), model.ImageUpload{Category: category, Paths: args})
			if err != nil {
				return fmt.Errorf("error uploading images: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "Image category")
	return cmd
}
