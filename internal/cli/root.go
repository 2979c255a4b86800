// Package cli wires the mis commands to the application services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/makeitso-dev/mis/domain/entities"
	"github.com/makeitso-dev/mis/infrastructure/deno"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RuntimeEnv overrides the default Deno binary.
const RuntimeEnv = "MIS_RUNTIME"

type globalOptions struct {
	logLevel string
	logJSON  bool
	runtime  string
	dir      string
}

// RootCmd builds the mis command tree.
func RootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "mis",
		Short:         "Run project plugins inside a least-privilege Deno sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(root.PersistentFlags(), opts)

	root.AddCommand(
		initCmd(opts),
		runCmd(opts),
		addCmd(opts),
		updateCmd(opts),
		infoCmd(opts),
		checkCmd(opts),
		schemaCmd(),
	)
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, opts *globalOptions) {
	runtime := os.Getenv(RuntimeEnv)
	if runtime == "" {
		runtime = deno.DefaultBinary
	}
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")
	fs.StringVar(&opts.runtime, "runtime", runtime, "Deno binary used to launch plugins (env "+RuntimeEnv+")")
	fs.StringVarP(&opts.dir, "dir", "C", ".", "Directory to start project discovery from")
}

// Execute runs the command line and returns the process exit code. A
// plugin that exits non-zero passes its code through.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := RootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if hint := entities.HintFor(err); hint != "" {
		fmt.Fprintf(stderr, "Hint: %s\n", hint)
	}

	var execErr *entities.ExecutionError
	if errors.As(err, &execErr) && execErr.ExitCode > 0 {
		return execErr.ExitCode
	}
	return 1
}
