package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/core"
	"ADBExplorer/internal/repository"
	"ADBExplorer/pkg/adb"
)

// dirSession overrides the directory of the persisted session for one listing
type dirSession struct {
	core.Session
	dir string
}

func (s dirSession) Directory() string {
	return s.dir
}

func newCdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cd [path]",
		Short: "Change the current remote directory",
		Long: `Change the current remote directory.

Without a path, returns to ` + core.DefaultDirectory + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			target := core.DefaultDirectory
			if len(args) == 1 {
				target = args[0]
			}

			file, err := a.files.Stat(ctx, target)
			if core.IsFatal(err) {
				return err
			}
			if !isBrowsable(*file) {
				return fmt.Errorf("%s: not a directory", file.Path)
			}
			if err := a.state.SetDirectory(file.Path); err != nil {
				return err
			}
			return check(err)
		}),
	}
}

func newPwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pwd",
		Short: "Print the selected device and current directory",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			device := "(none)"
			if d := a.state.Device(); d != nil {
				device = fmt.Sprintf("%s (%s)", d.DisplayName(), d.ID)
			}
			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("session", map[string]string{
					"device":    device,
					"directory": a.state.Directory(),
				})
				return nil
			}
			fmt.Printf("Device:    %s\n", device)
			fmt.Printf("Directory: %s\n", a.state.Directory())
			return nil
		}),
	}
}

func newLsCmd() *cobra.Command {
	var human, all bool

	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a remote directory",
		Long: `List a remote directory, the current one by default.

Examples:
  adbx ls
  adbx ls DCIM --human
  adbx ls /sdcard/Download -a`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			files := a.files
			if len(args) == 1 {
				dir := adb.EnsureTrailingSlash(adb.ResolvePath(a.state.Directory(), args[0]))
				session := dirSession{Session: a.state, dir: dir}
				files = repository.NewFileRepository(a.client, session, cfg.DownloadsDir, logger)
			}

			entries, err := files.List(ctx)
			if core.IsFatal(err) {
				return err
			}
			if !all {
				entries = lo.Filter(entries, func(f core.File, _ int) bool {
					return !strings.HasPrefix(f.Name, ".")
				})
			}

			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("list", entries)
				return check(err)
			}
			renderListing(os.Stdout, entries, human, isTerminal(os.Stdout))
			return check(err)
		}),
	}

	cmd.Flags().BoolVarP(&human, "human", "H", false, "Print sizes in human readable units")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include entries starting with '.'")
	return cmd
}

func renderListing(out io.Writer, entries []core.File, human, colour bool) {
	table := newTable(out, []string{"Permissions", "Owner", "Group", "Size", "Modified", "Name"})
	table.AppendBulk(lo.Map(entries, func(f core.File, _ int) []string {
		return []string{f.Permissions, f.Owner, f.Group, formatSize(f, human), f.Date(), displayName(f, colour)}
	}))
	table.Render()
}

func newStatCmd() *cobra.Command {
	var human bool

	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the properties of a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			file, err := a.files.Stat(ctx, args[0])
			if core.IsFatal(err) {
				return err
			}
			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("stat", file)
				return check(err)
			}
			renderProperties(os.Stdout, *file, human)
			return check(err)
		}),
	}

	cmd.Flags().BoolVarP(&human, "human", "H", false, "Print the size in human readable units")
	return cmd
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print the contents of a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			file, err := a.files.Stat(ctx, args[0])
			if core.IsFatal(err) {
				return err
			}
			content, err := a.files.Open(ctx, *file)
			if core.IsFatal(err) {
				return err
			}
			fmt.Print(content)
			return check(err)
		}),
	}
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <new-name>",
		Short: "Rename a remote file within its directory",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			file, err := a.files.Stat(ctx, args[0])
			if core.IsFatal(err) {
				return err
			}
			target, err := a.files.Rename(ctx, *file, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", file.Path, target)
			return nil
		}),
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path> [path...]",
		Short: "Delete remote files; directories are removed recursively",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			var failed int
			for _, p := range args {
				file, err := a.files.Stat(ctx, p)
				if core.IsFatal(err) {
					printNotice(fmt.Sprintf("%s: %v", p, err))
					failed++
					continue
				}
				msg, err := a.files.Delete(ctx, *file)
				if err != nil {
					printNotice(fmt.Sprintf("%s: %v", file.Path, err))
				}
				if core.IsFatal(err) {
					failed++
					continue
				}
				fmt.Println(msg)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d entries could not be deleted", failed, len(args))
			}
			return nil
		}),
	}
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a directory in the current directory",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if strings.ContainsAny(args[0], `/\`) {
				return core.ErrInvalidName
			}
			out, err := a.files.MakeDirectory(ctx, args[0])
			if core.IsFatal(err) {
				return err
			}
			if out != "" {
				fmt.Print(out)
			}
			return check(err)
		}),
	}
}
