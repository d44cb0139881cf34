package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/app"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/config"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
)

// exitError carries a non-zero exit code out of cobra without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type Options struct {
	Datastore   string
	EnvFile     string
	ConfigFile  string
	Output      string
	LogLevel    string
	Verbose     bool
	Server      string
	Port        int
	Username    string
	Password    string
	NoSSLVerify bool

	insecureSet bool
	level       logger.Level
	out         io.Writer
}

func DefaultOptions() *Options {
	return &Options{
		EnvFile:  ".env",
		LogLevel: "info",
		level:    logger.LevelInfo,
		out:      os.Stdout,
	}
}

func NewDatastoreUsageCommand() *cobra.Command {
	o := DefaultOptions()
	cmd := &cobra.Command{
		Use:   "dsusage --datastore NAME [flags]",
		Short: "List the virtual machines whose disks or CD-ROMs live on a datastore.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	o.Bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("datastore")
	return cmd
}

func (o *Options) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.Datastore, "datastore", o.Datastore, "Datastore name")
	fs.StringVarP(&o.Server, "host", "s", o.Server, "vSphere service address to connect to (overrides ESXI_URL)")
	fs.IntVarP(&o.Port, "port", "o", o.Port, "Port to connect on (overrides ESXI_PORT)")
	fs.StringVarP(&o.Username, "user", "u", o.Username, "User name to use when connecting to host (overrides ESXI_USERNAME)")
	fs.StringVarP(&o.Password, "password", "p", o.Password, "Password to use when connecting to host (overrides ESXI_PASSWORD)")
	fs.BoolVar(&o.NoSSLVerify, "disable-ssl-verification", o.NoSSLVerify, "Disable verification of the server's SSL certificate (overrides ESXI_INSECURE)")
	fs.StringVar(&o.EnvFile, "env-file", o.EnvFile, "Path to an optional .env file with connection settings")
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Path to an optional TOML feature file")
	fs.StringVar(&o.Output, "output", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(config.LegalFormats, ", ")))
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Lowest level logged to stderr. One of: (debug, info, warning, error).")
	fs.BoolVarP(&o.Verbose, "verbose", "v", o.Verbose, "Log debug details to stderr (same as --log-level debug)")
}

func (o *Options) Complete(cmd *cobra.Command, args []string) error {
	o.insecureSet = cmd.Flags().Changed("disable-ssl-verification")

	level, err := logger.ParseLevel(o.LogLevel)
	if err != nil {
		return err
	}
	if o.Verbose {
		level = logger.LevelDebug
	}
	o.level = level
	return nil
}

func (o *Options) Validate(args []string) error {
	if len(o.Output) > 0 && !funk.ContainsString(config.LegalFormats, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(config.LegalFormats, ", "))
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("port %d is out of range", o.Port)
	}
	return nil
}

func (o *Options) overrides() config.Overrides {
	ov := config.Overrides{
		Server:   o.Server,
		Port:     o.Port,
		Username: o.Username,
		Password: o.Password,
	}
	if o.insecureSet {
		insecure := o.NoSSLVerify
		ov.Insecure = &insecure
	}
	return ov
}

func (o *Options) Run(ctx context.Context) error {
	log := logger.New()
	log.SetLevel(o.level)

	// The name is checked before any settings are read so a bad .env or
	// feature file never hides it.
	if o.Datastore == "" {
		a, err := app.New(nil, nil, log, o.out)
		if err != nil {
			log.Error("Failed to initialize", logger.Error(err))
			return &exitError{code: app.ExitFailure}
		}
		return exitCode(a.Run(ctx, o.Datastore))
	}

	features, err := config.LoadFeatureConfig(o.ConfigFile)
	if err != nil {
		log.Error("Failed to load feature config", logger.Error(err), logger.F("path", o.ConfigFile))
		return &exitError{code: app.ExitFailure}
	}
	if o.Output != "" {
		features.Output.Format = o.Output
	}

	cfg, err := config.LoadWithOverrides(o.EnvFile, o.overrides())
	if err != nil {
		log.Error("Failed to load infrastructure config", logger.Error(err), logger.F("path", o.EnvFile))
		return &exitError{code: app.ExitFailure}
	}

	a, err := app.New(cfg, features, log, o.out)
	if err != nil {
		log.Error("Failed to initialize", logger.Error(err))
		return &exitError{code: app.ExitFailure}
	}
	return exitCode(a.Run(ctx, o.Datastore))
}

func exitCode(code int) error {
	if code != app.ExitOK {
		return &exitError{code: code}
	}
	return nil
}
