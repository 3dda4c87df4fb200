package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/and161185/notepad/internal/errs"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				if err := a.restore(); err != nil {
					return err
				}
				if !a.sess.Authenticated() {
					return errs.ErrNotAuthenticated
				}
				if err := a.backgroundErr(); err != nil {
					return err
				}
				return printAs(cmd.OutOrStdout(), output, viewsOf(a.notes.Notes()))
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				if err := a.restore(); err != nil {
					return err
				}
				n, err := a.notes.Create(cmd.Context(), title, content)
				if err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), viewOf(n))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note content")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var id, title, content string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Replace the title and content of a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				if err := a.restore(); err != nil {
					return err
				}
				n, err := a.notes.Update(cmd.Context(), id, title, content)
				if err != nil {
					return err
				}
				printJSON(cmd.OutOrStdout(), viewOf(n))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "note id")
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(func(a *app) error {
				if err := a.restore(); err != nil {
					return err
				}
				if err := a.notes.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%d left)\n", id, len(a.notes.Notes()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "note id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notepad %s (%s)\n", version, buildDate)
		},
	}
}
