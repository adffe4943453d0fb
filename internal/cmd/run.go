package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/padmapper/apiclient"
	"github.com/Alia5/padmapper/input"
	"github.com/Alia5/padmapper/internal/configpaths"
	"github.com/Alia5/padmapper/internal/monitor"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/mapping/mapfile"
	"github.com/Alia5/padmapper/output"
)

// ViiperConfig selects the VIIPER server used by --output=viiper.
type ViiperConfig struct {
	Addr     string        `help:"VIIPER API server address" default:"localhost:3242" env:"PADMAPPER_VIIPER_ADDR"`
	Password string        `help:"VIIPER API password; empty connects without authentication" env:"PADMAPPER_VIIPER_PASSWORD"`
	Bus      uint32        `help:"Bus to attach the devices to; 0 creates a new bus" default:"0" env:"PADMAPPER_VIIPER_BUS"`
	Timeout  time.Duration `help:"VIIPER dial and request timeout" default:"5s" env:"PADMAPPER_VIIPER_TIMEOUT"`
}

// MonitorConfig enables the websocket activity feed.
type MonitorConfig struct {
	Addr string `help:"Listen address of the activity feed (served at /ws); empty disables it" env:"PADMAPPER_MONITOR_ADDR"`
}

type Run struct {
	Mapping       string        `arg:"" help:"Mapping file, or the name of one in the mappings directory"`
	Output        string        `help:"Output backend" enum:"uinput,viiper,log" default:"uinput" env:"PADMAPPER_OUTPUT"`
	DeviceName    string        `help:"Name of the virtual uinput device" default:"padmapper" env:"PADMAPPER_DEVICE_NAME"`
	PulseInterval time.Duration `help:"Interval between relative axis pulses" default:"20ms" env:"PADMAPPER_PULSE_INTERVAL"`
	Viiper        ViiperConfig  `embed:"" prefix:"viiper."`
	Monitor       MonitorConfig `embed:"" prefix:"monitor."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, trace mapping.Observer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.StartMapper(ctx, logger, trace)
}

// StartMapper loads the mapping, opens the controller and the output backend
// and maps events until ctx is canceled or the controller disconnects.
func (r *Run) StartMapper(ctx context.Context, logger *slog.Logger, trace mapping.Observer) error {
	if r.PulseInterval <= 0 {
		return fmt.Errorf("pulse interval must be positive, got %s", r.PulseInterval)
	}
	path := configpaths.ResolveMapping(r.Mapping)

	sink, err := r.openSink(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("failed to close output", "error", err)
		}
	}()

	dev, act := output.New(sink, output.WithPulseInterval(r.PulseInterval), output.WithLogger(logger))
	actDone := make(chan struct{})
	go func() {
		defer close(actDone)
		act.Run()
	}()
	// Closing the last handle stops the actuator after it drained the queue,
	// so the final hands-off reset reaches the sink.
	defer func() {
		_ = dev.Close()
		<-actDone
	}()

	var observers mapping.Observers
	if trace != nil {
		observers = append(observers, trace)
	}
	var hub *monitor.Hub
	if r.Monitor.Addr != "" {
		hub = monitor.NewHub(logger.With("component", "monitor"), monitor.Config{})
		observers = append(observers, hub)
	}

	m, err := mapping.NewMapperFromFile(dev, path, mapfile.Loader{},
		mapping.WithLogger(logger), mapping.WithObserver(observers))
	if err != nil {
		return err
	}
	logger.Info("Loaded mapping", "path", m.ActiveConfig(), "configs", len(m.Configs()), "device", m.InputName())

	in, err := input.OpenByName(m.InputName())
	if err != nil {
		return err
	}
	defer in.Close()
	logger.Info("Opened input device", "path", in.Path(), "name", in.Name())

	g, gctx := errgroup.WithContext(ctx)
	if hub != nil {
		hub.SetState(monitor.State{Device: m.InputName(), Active: m.ActiveConfig(), Configs: m.Configs()})
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
		g.Go(func() error { return hub.ListenAndServe(gctx, r.Monitor.Addr) })
	}
	g.Go(func() error {
		defer m.Release()
		if err := in.Poll(gctx, m.HandleEvent); err != nil {
			return fmt.Errorf("%s: %w", in.Name(), err)
		}
		return nil
	})

	err = g.Wait()
	if err == nil {
		logger.Info("Shutting down")
	}
	return err
}

func (r *Run) openSink(ctx context.Context, logger *slog.Logger) (output.Sink, error) {
	switch r.Output {
	case "uinput":
		s, err := output.NewUInputSink(r.DeviceName)
		if err != nil {
			return nil, fmt.Errorf("create uinput device: %w", err)
		}
		logger.Info("Created uinput device", "name", r.DeviceName)
		return s, nil
	case "viiper":
		c := apiclient.NewWithConfig(r.Viiper.Addr, &apiclient.Config{
			DialTimeout:  r.Viiper.Timeout,
			ReadTimeout:  r.Viiper.Timeout,
			WriteTimeout: r.Viiper.Timeout,
			Password:     r.Viiper.Password,
		})
		cctx, cancel := context.WithTimeout(ctx, 2*r.Viiper.Timeout)
		defer cancel()
		if _, err := c.Ping(cctx); err != nil {
			return nil, fmt.Errorf("reach VIIPER at %s: %w", r.Viiper.Addr, err)
		}
		return output.NewViiperSink(cctx, c, r.Viiper.Bus, logger)
	case "log":
		return output.NewLogSink(logger.With("component", "output")), nil
	default:
		return nil, fmt.Errorf("unknown output %q", r.Output)
	}
}
