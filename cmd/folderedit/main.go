package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	APIUrl     string
	LogLevel   string
}

// streams are the terminal the commands talk to.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func buildRoot(in io.Reader, out, errOut io.Writer) *cobra.Command {
	flags := &GlobalFlags{}
	s := streams{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "folderedit",
		Short: "Edit and delete vault folders",
		Long: `folderedit renames or deletes folders held by a folder service, and can run
that service itself.

Examples:
  folderedit serve --store sqlite://folders.db
  folderedit folders create --name Work
  folderedit edit --id <id> --name "Work projects"
  folderedit delete --id <id> --yes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	pf.StringVar(&flags.APIUrl, "api-url", "", "folder service URL, overrides [client].url")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level, overrides [log].level")

	root.AddCommand(
		createServeCommand(flags, s),
		createFoldersCommand(flags, s),
		createShowCommand(flags, s),
		createEditCommand(flags, s),
		createDeleteCommand(flags, s),
		createCheckCommand(flags, s),
	)
	return root
}
