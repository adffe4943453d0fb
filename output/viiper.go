package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/padmapper/apiclient"
)

// ViiperSink streams reports to a keyboard and a mouse attached to a VIIPER
// bus. Closing it detaches both devices.
type ViiperSink struct {
	*ReportSink
	client  *apiclient.Client
	busID   uint32
	devices []*apiclient.Device
	logger  *slog.Logger
}

// NewViiperSink creates (or reuses) bus busID, adds a keyboard and a mouse and
// opens their input streams. busID 0 lets the server choose.
func NewViiperSink(ctx context.Context, c *apiclient.Client, busID uint32, logger *slog.Logger) (*ViiperSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bus, err := c.BusCreate(ctx, busID)
	if err != nil {
		var apiErr apiclient.APIError
		// 409: the bus already exists and is reused.
		if busID == 0 || !errors.As(err, &apiErr) || apiErr.Status != 409 {
			return nil, fmt.Errorf("create bus: %w", err)
		}
		bus = &apiclient.BusCreateResponse{BusID: busID}
	}

	v := &ViiperSink{client: c, busID: bus.BusID, logger: logger}
	kbd, kdev, err := c.AddDeviceAndConnect(ctx, bus.BusID, "keyboard")
	if err != nil {
		return nil, fmt.Errorf("add keyboard: %w", err)
	}
	v.devices = append(v.devices, kdev)

	ms, mdev, err := c.AddDeviceAndConnect(ctx, bus.BusID, "mouse")
	if err != nil {
		kbd.Close()
		v.detach()
		return nil, fmt.Errorf("add mouse: %w", err)
	}
	v.devices = append(v.devices, mdev)

	v.ReportSink = NewReportSink(kbd, ms)
	logger.Info("attached viiper devices", "bus", bus.BusID, "keyboard", kdev.DevID, "mouse", mdev.DevID)
	return v, nil
}

// BusID returns the bus the devices live on.
func (v *ViiperSink) BusID() uint32 { return v.busID }

func (v *ViiperSink) Close() error {
	err := v.ReportSink.Close()
	v.detach()
	return err
}

func (v *ViiperSink) detach() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, d := range v.devices {
		if _, err := v.client.DeviceRemove(ctx, v.busID, d.DevID); err != nil {
			v.logger.Warn("failed to remove viiper device", "bus", v.busID, "dev", d.DevID, "error", err)
		}
	}
	v.devices = nil
}
