package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/tendbot/tendbot-core/migrations"

	"github.com/tendbot/tendbot-core/internal/device"
	"github.com/tendbot/tendbot-core/internal/gpio"
	"github.com/tendbot/tendbot-core/internal/infrastructure/config"
	"github.com/tendbot/tendbot-core/internal/infrastructure/database"
	"github.com/tendbot/tendbot-core/internal/infrastructure/influxdb"
	"github.com/tendbot/tendbot-core/internal/infrastructure/logging"
	"github.com/tendbot/tendbot-core/internal/infrastructure/mqtt"
	"github.com/tendbot/tendbot-core/internal/journal"
	"github.com/tendbot/tendbot-core/internal/machine"
	"github.com/tendbot/tendbot-core/internal/status"
	"github.com/tendbot/tendbot-core/internal/telemetry"
)

// commandQueueSize bounds operator commands waiting for the main loop.
const commandQueueSize = 16

type runOptions struct {
	ConfigPath string

	// Once starts and stops the machine without waiting for commands.
	Once bool

	// NewChip selects the GPIO backend. Defaults to newChip.
	NewChip func(backend string) (gpio.Chip, error)

	// LogOutput overrides the configured log destination.
	LogOutput io.Writer

	// Commands, if set, is used instead of a fresh channel. Tests feed it.
	Commands chan status.Command
}

func newChip(backend string) (gpio.Chip, error) {
	switch backend {
	case config.BackendRPIO:
		return gpio.NewRPIOChip(), nil
	case config.BackendSim:
		return gpio.NewSimChip(), nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", backend)
	}
}

// runMachine is the process body, separated from main for testability.
//
// Start failures still dispatch Stop so the handshake lines are left in
// a defined state, then the start error is returned (exit status 1).
func runMachine(ctx context.Context, opts runOptions) error {
	log := logging.Default()
	log.Info("starting tendbot", "version", version, "commit", commit, "build_date", date)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.LogOutput != nil {
		log = logging.NewWithWriter(cfg.Logging, opts.LogOutput, version, cfg.Site.ID)
	} else {
		log = logging.New(cfg.Logging, version, cfg.Site.ID)
	}
	log.Info("configuration loaded", "path", opts.ConfigPath, "backend", cfg.Devices.Backend)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	recorder := journal.NewRecorder(journal.New(db.DB), log)
	log.Info("journal ready", "run_id", recorder.RunID())

	chipFor := opts.NewChip
	if chipFor == nil {
		chipFor = newChip
	}
	chip, err := chipFor(cfg.Devices.Backend)
	if err != nil {
		return fmt.Errorf("selecting gpio backend: %w", err)
	}
	set, err := device.Bringup(cfg.Devices, chip, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := set.Close(); closeErr != nil {
			log.Error("error closing devices", "error", closeErr)
		}
	}()

	ctrl, err := machine.New(machine.Options{
		Devices:          set,
		TendingDutyCycle: cfg.TendingDutyCycle(),
		Ready:            cfg.Machine.Ready,
		Logger:           log,
		Observers:        []machine.Observer{recorder},
	})
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	commands := opts.Commands
	if commands == nil {
		commands = make(chan status.Command, commandQueueSize)
	}

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		publisher := status.NewPublisher(mqttClient, status.DefaultQueueSize, log)
		pubCtx, cancelPub := context.WithCancel(context.WithoutCancel(ctx))
		pubDone := make(chan struct{})
		go func() {
			defer close(pubDone)
			publisher.Run(pubCtx)
		}()
		// Registered after the MQTT close above, so this runs first: the
		// final Stop notifications are drained before disconnecting.
		defer func() {
			cancelPub()
			<-pubDone
		}()
		ctrl.AddObserver(publisher)
		if err := publisher.PublishSnapshot(ctrl.Snapshot()); err != nil {
			log.Warn("publishing initial machine state failed", "error", err)
		}

		if err := status.SubscribeCommands(mqttClient, commands, log); err != nil {
			return fmt.Errorf("subscribing to commands: %w", err)
		}
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		ctrl.AddObserver(telemetry.NewRecorder(influxClient))
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := ctrl.Start(); err != nil {
		return errors.Join(fmt.Errorf("starting machine: %w", err), stopMachine(ctrl))
	}
	if !ctrl.IsRunning() {
		return errors.Join(errors.New("machine did not enter running"), stopMachine(ctrl))
	}
	log.Info("machine running")

	if !opts.Once {
		estop := set.DigitalInputs().Get(device.EStop)
		supervise(ctx, ctrl, estop, commands, cfg.GetPollInterval(), log)
	}

	if err := stopMachine(ctrl); err != nil {
		return err
	}
	log.Info("machine terminated", "run_id", recorder.RunID())
	return nil
}

// stopMachine dispatches Stop and checks the machine ended Terminated.
func stopMachine(ctrl *machine.Controller) error {
	if err := ctrl.Stop(); err != nil {
		return fmt.Errorf("stopping machine: %w", err)
	}
	if !ctrl.IsTerminated() {
		return fmt.Errorf("machine not terminated after stop: %s", ctrl.State())
	}
	return nil
}

// eStop is the part of device.DigitalInput supervise polls.
type eStop interface {
	Read() (bool, error)
}

// supervise applies operator commands and polls the e-stop line until the
// context ends, the machine terminates, or the e-stop is asserted.
// It is the only goroutine that calls the controller.
func supervise(ctx context.Context, ctrl *machine.Controller, estop eStop, commands <-chan status.Command, poll time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return

		case cmd := <-commands:
			if err := status.Apply(ctrl, cmd); err != nil {
				log.Warn("command rejected", "command", cmd.String(), "error", err)
			} else {
				log.Info("command applied", "command", cmd.String())
			}
			if ctrl.IsTerminated() {
				return
			}

		case <-ticker.C:
			asserted, err := estop.Read()
			if err != nil {
				log.Error("e-stop read failed", "error", err)
				continue
			}
			if asserted {
				log.Warn("e-stop asserted, stopping machine")
				return
			}
		}
	}
}
