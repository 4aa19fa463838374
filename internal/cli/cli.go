package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/godi/internal/app"
)

// EnvPrefix prefixes the environment variables that mirror every flag,
// e.g. DIDUMP_LOG_LEVEL for --log-level.
const EnvPrefix = "DIDUMP"

var version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// NewRootCommand builds the didump command tree. opts are passed to every
// App the commands create.
func NewRootCommand(outW, errW io.Writer, opts ...app.Option) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:     "didump [flags] [file-or-directory]...",
		Short:   "List the components libraries register when loaded",
		Long:    "didump loads each library into a registry of its own and lists the components it declared.\nWith no input, the current directory is inspected.",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				Inputs:           args,
				Recursive:        v.GetBool("recursive"),
				Manifest:         v.GetString("manifest"),
				WriteDefinitions: v.GetBool("def"),
				WriteRepository:  v.GetBool("rep"),
				RepositoryPath:   v.GetString("rep-file"),
				Format:           strings.ToLower(v.GetString("format")),
				PublishURL:       v.GetString("publish"),
				PublishNamespace: v.GetString("namespace"),
				LogFormat:        strings.ToLower(v.GetString("log-format")),
				LogLevel:         strings.ToLower(v.GetString("log-level")),
				Trace:            strings.ToLower(v.GetString("trace")),
			})
			if err != nil {
				return usageError(err)
			}
			return run(cmd.Context(), outW, errW, cfg, opts, (*app.App).Run)
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })

	pf := root.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (yaml)")
	pf.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.String("trace", "none", "Trace exporter. Options: 'none' or 'stdout'.")

	f := root.Flags()
	f.BoolP("recursive", "R", false, "introspect subdirectories recursively")
	f.BoolP("def", "d", false, "generate di definition files (.didef)")
	f.BoolP("rep", "r", false, "generate di repository definition file (.direp)")
	f.String("rep-file", app.DefaultRepositoryPath, "path of the repository definition file")
	f.String("format", "text", "dump format. Options: 'text', 'yaml', 'json', 'hcl'.")
	f.StringP("manifest", "m", "", "HCL load plan to run instead of the inputs")
	f.String("publish", "", "socket.io URL to publish the dump to")
	f.String("namespace", "/", "socket.io namespace used with --publish")

	root.AddCommand(newWatchCommand(v, outW, errW, opts))
	return root
}

func newWatchCommand(v *viper.Viper, outW, errW io.Writer, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Load libraries as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				WatchDir:        args[0],
				WatchFilter:     v.GetString("filter"),
				HealthcheckPort: v.GetInt("http-port"),
				LogFormat:       strings.ToLower(v.GetString("log-format")),
				LogLevel:        strings.ToLower(v.GetString("log-level")),
				Trace:           strings.ToLower(v.GetString("trace")),
			})
			if err != nil {
				return usageError(err)
			}
			return run(cmd.Context(), outW, errW, cfg, opts, (*app.App).Watch)
		},
	}
	cmd.Flags().String("filter", "", "only load files whose name contains this string")
	cmd.Flags().Int("http-port", 0, "port for the /health and /components endpoints. 0 is disabled.")
	return cmd
}

// initConfig layers flags over DIDUMP_* environment variables over the
// config file over flag defaults.
func initConfig(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return &ExitError{Code: 2, Message: fmt.Sprintf("reading config file %s: %v", cfgFile, err)}
	}
	return nil
}

func run(ctx context.Context, outW, errW io.Writer, cfg *app.Config, opts []app.Option, fn func(*app.App, context.Context) error) (err error) {
	a, err := app.NewApp(outW, errW, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a, ctx)
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, opts ...app.Option) error {
	root := NewRootCommand(outW, errW, opts...)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && isUsageError(err) {
		return usageError(err)
	}
	return err
}

// isUsageError recognizes the argument errors cobra returns without going
// through the flag error func.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "accepts ") || strings.HasPrefix(msg, "unknown command")
}
