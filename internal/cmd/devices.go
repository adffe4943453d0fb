package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/Alia5/padmapper/input"
)

type Devices struct {
	JSON bool `help:"Print the list as JSON"`

	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run() error {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	infos, err := input.List()
	if err != nil {
		return err
	}
	return printDevices(out, infos, d.JSON)
}

func printDevices(out io.Writer, infos []input.Info, asJSON bool) error {
	if asJSON {
		if infos == nil {
			infos = []input.Info{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPATH\tNAME")
	for i, info := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, info.Path, info.Name)
	}
	return tw.Flush()
}

// Events prints the normalized event stream of one device. Use it to find
// the key and axis names and the axis ranges for a mapping file.
type Events struct {
	Device string `help:"Device path (/dev/input/eventN) or name; asks interactively when omitted on a terminal" env:"PADMAPPER_EVENTS_DEVICE"`

	Out io.Writer `kong:"-"`
	In  io.Reader `kong:"-"`
}

// Run is called by Kong when the events command is executed.
func (e *Events) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := e.Out
	if out == nil {
		out = os.Stdout
	}

	target := e.Device
	if target == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("no --device given and stdin is not a terminal")
		}
		infos, err := input.List()
		if err != nil {
			return err
		}
		in := e.In
		if in == nil {
			in = os.Stdin
		}
		target, err = pickDevice(out, in, infos)
		if err != nil {
			return err
		}
	}

	dev, err := openDevice(target)
	if err != nil {
		return err
	}
	defer dev.Close()
	logger.Info("Reading events", "path", dev.Path(), "name", dev.Name())

	return dev.Poll(ctx, func(ev input.Event) {
		fmt.Fprintln(out, ev)
	})
}

func openDevice(target string) (*input.Device, error) {
	if strings.HasPrefix(target, "/") {
		return input.Open(target)
	}
	return input.OpenByName(target)
}

// pickDevice lists infos and reads a 1-based choice from in.
func pickDevice(out io.Writer, in io.Reader, infos []input.Info) (string, error) {
	if len(infos) == 0 {
		return "", fmt.Errorf("%w: no readable devices under %s", input.ErrDeviceNotFound, input.DevicePattern)
	}
	if err := printDevices(out, infos, false); err != nil {
		return "", err
	}
	fmt.Fprint(out, "device number: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read choice: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(infos) {
		return "", fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}
	return infos[n-1].Path, nil
}
