package app

import (
	"context"
	"fmt"
	"io"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/config"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/logger"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/report"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/scanner"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/service"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Connector opens an authenticated inventory session.
type Connector func(ctx context.Context, cfg *config.Config, log *logger.Logger) (service.Session, error)

type App struct {
	config   *config.Config
	features *config.FeatureConfig
	logger   *logger.Logger
	reporter *report.Reporter
	connect  Connector
}

// New builds an App that writes its report to output. A nil features config
// means defaults.
func New(cfg *config.Config, features *config.FeatureConfig, log *logger.Logger, output io.Writer) (*App, error) {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	if output == nil {
		output = io.Discard
	}
	if features == nil {
		features = config.DefaultFeatureConfig()
	}
	if err := features.Validate(); err != nil {
		return nil, err
	}
	reporter, err := report.New(output, features.Output.Format)
	if err != nil {
		return nil, err
	}
	return &App{
		config:   cfg,
		features: features,
		logger:   log,
		reporter: reporter,
		connect:  service.Connect,
	}, nil
}

// Run scans for machines using datastore and returns the process exit code.
// A datastore that resolves but is used by no machine is a success.
func (a *App) Run(ctx context.Context, datastore string) int {
	if datastore == "" {
		a.logger.Error("Invalid datastore name", logger.Action("validation"), logger.Reason("empty"))
		a.reporter.InvalidName()
		return ExitFailure
	}
	if a.config == nil {
		a.logger.Error("Connection settings missing", logger.Action("validation"))
		return ExitFailure
	}
	if err := a.config.Validate(); err != nil {
		a.logger.Error("Invalid connection settings", logger.Action("validation"), logger.Error(err))
		return ExitFailure
	}

	kinds, err := a.features.Kinds()
	if err != nil {
		a.logger.Error("Invalid scan settings", logger.Action("validation"), logger.Error(err))
		return ExitFailure
	}

	session, err := a.connect(ctx, a.config, a.logger)
	if err != nil {
		a.logger.Error("Failed to connect", logger.Action("connect"), logger.Server(a.config.ServerURL()), logger.Error(err))
		a.reporter.Fault(err)
		return ExitFailure
	}
	defer func() {
		if err := a.close(ctx, session); err != nil {
			a.logger.Error("Failed to close session", logger.Error(err))
		}
	}()

	res, err := scanner.New(session, a.logger, kinds...).FindMachinesUsingDatastore(ctx, datastore)
	if err != nil {
		if scanner.IsValidationError(err) {
			a.reporter.InvalidName()
			return ExitFailure
		}
		if scanner.IsRemoteFault(err) {
			a.logger.Error("Endpoint fault", logger.Action("scan"), logger.Status("fault"), logger.Datastore(datastore), logger.Error(err))
		} else {
			a.logger.Error("Scan failed", logger.Action("scan"), logger.Status("failed"), logger.Datastore(datastore), logger.Error(err))
		}
		a.reporter.Fault(err)
		return ExitFailure
	}

	if err := a.reporter.Result(res); err != nil {
		a.logger.Error("Failed to write report", logger.Error(err))
		return ExitFailure
	}

	if res.Status == scanner.StatusNotFound {
		return ExitFailure
	}
	return ExitOK
}

func (a *App) close(ctx context.Context, session service.Session) error {
	if err := session.Close(ctx); err != nil {
		return fmt.Errorf("failed to close VMware session: %w", err)
	}
	a.logger.Debug("Disconnected", logger.Action("disconnect"))
	return nil
}
