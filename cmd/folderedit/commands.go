package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/folderedit/internal/connectivity"
	"github.com/loykin/folderedit/internal/controller"
	"github.com/loykin/folderedit/internal/feedback"
	"github.com/loykin/folderedit/internal/folder"
)

// FolderFlags holds flags for commands that target one folder.
type FolderFlags struct {
	ID   string
	Name string
	Item string
	Yes  bool
	JSON bool
}

// withApp loads configuration, runs fn and releases what fn opened.
func withApp(flags *GlobalFlags, s streams, fn func(ctx context.Context, a *app) error) error {
	a, err := loadApp(flags, s.errOut)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(context.Background(), a)
}

func requireID(id string) error {
	if id == "" {
		return errors.New("--id is required")
	}
	return nil
}

func createFoldersCommand(flags *GlobalFlags, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List and create folders",
	}
	cmd.AddCommand(createListCommand(flags, s), createCreateCommand(flags, s), createAddItemCommand(flags, s))
	return cmd
}

type listedFolder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RevisionDate time.Time `json:"revision_date"`
}

func createListCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders with their decoded names",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				x, err := a.cipher()
				if err != nil {
					return err
				}
				fs, err := c.List(ctx)
				if err != nil {
					return err
				}
				rows := make([]listedFolder, 0, len(fs))
				for _, f := range fs {
					name, err := x.Decode(f.Name)
					if err != nil {
						a.log.Warn("folder name not decodable", "id", f.ID, "error", err)
						name = "<undecodable>"
					}
					rows = append(rows, listedFolder{ID: f.ID, Name: name, RevisionDate: f.RevisionDate})
				}
				if ff.JSON {
					return printJSON(s.out, rows)
				}
				tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tNAME\tREVISED")
				for _, r := range rows {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.RevisionDate.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&ff.JSON, "json", false, "print JSON")
	return cmd
}

func createCreateCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				if ff.Name == "" {
					return errors.New("--name is required")
				}
				c, err := a.client()
				if err != nil {
					return err
				}
				x, err := a.cipher()
				if err != nil {
					return err
				}
				enc, err := x.Encode(ff.Name)
				if err != nil {
					return err
				}
				f, err := c.Create(ctx, enc)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(s.out, f.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ff.Name, "name", "", "folder name")
	return cmd
}

func createAddItemCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "File an item under a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireID(ff.ID); err != nil {
				return err
			}
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				id, err := c.AddItem(ctx, ff.Item, ff.ID)
				if errors.Is(err, folder.ErrNotFound) {
					return fmt.Errorf("folder %s not found", ff.ID)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(s.out, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ff.ID, "id", "", "folder id")
	cmd.Flags().StringVar(&ff.Item, "item", "", "item id (generated when empty)")
	return cmd
}

func createShowCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireID(ff.ID); err != nil {
				return err
			}
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				sess, err := a.session(ctx, ff.ID, s, false)
				if err != nil {
					return err
				}
				if sess.ctrl.State() == controller.StateUnavailable {
					_, _ = fmt.Fprintln(s.out, "Folder not found.")
					return outcomeErr(controller.OutcomeUnavailable)
				}
				rec := sess.ctrl.Record()
				row := listedFolder{ID: rec.ID, Name: sess.ctrl.Name(), RevisionDate: rec.RevisionDate}
				if ff.JSON {
					return printJSON(s.out, row)
				}
				_, _ = fmt.Fprintf(s.out, "ID:       %s\nName:     %s\nRevised:  %s\n", row.ID, row.Name, row.RevisionDate.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ff.ID, "id", "", "folder id")
	cmd.Flags().BoolVar(&ff.JSON, "json", false, "print JSON")
	return cmd
}

func createEditCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Rename a folder",
		Long: `Rename a folder. The name is sealed locally before it is sent.

Exit codes: 0 saved, 2 rejected, 3 unknown failure, 4 empty name,
5 offline, 7 skipped, 8 folder not found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireID(ff.ID); err != nil {
				return err
			}
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				sess, err := a.session(ctx, ff.ID, s, false)
				if err != nil {
					return err
				}
				return outcomeErr(sess.ctrl.Save(ctx, ff.Name))
			})
		},
	}
	cmd.Flags().StringVar(&ff.ID, "id", "", "folder id")
	cmd.Flags().StringVar(&ff.Name, "name", "", "new folder name")
	return cmd
}

func createDeleteCommand(flags *GlobalFlags, s streams) *cobra.Command {
	ff := &FolderFlags{}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a folder after confirmation",
		Long: `Delete a folder. Asks for confirmation unless --yes is given.

Exit codes: 0 deleted, 2 rejected, 3 unknown failure, 5 offline,
6 declined, 8 folder not found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireID(ff.ID); err != nil {
				return err
			}
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				sess, err := a.session(ctx, ff.ID, s, ff.Yes)
				if err != nil {
					return err
				}
				return outcomeErr(sess.ctrl.Delete(ctx))
			})
		},
	}
	cmd.Flags().StringVar(&ff.ID, "id", "", "folder id")
	cmd.Flags().BoolVarP(&ff.Yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func createCheckCommand(flags *GlobalFlags, s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the folder service is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, s, func(ctx context.Context, a *app) error {
				c, err := a.client()
				if err != nil {
					return err
				}
				console := feedback.NewConsole(s.in, s.out)
				if !connectivity.NewGate(c, console, connectivity.DefaultNotice).Allow(ctx) {
					return &exitError{code: exitOffline, reason: "offline"}
				}
				_, _ = fmt.Fprintln(s.out, "connected")
				return nil
			})
		},
	}
}
