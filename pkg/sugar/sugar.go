// Package sugar provides convenience helpers on top of the device
// package: enumeration of FIDO authenticators and tap-to-select across
// several connected ones.
package sugar

import (
	"context"
	"errors"
	"sync"

	"github.com/pico-keys/commissioner/pkg/ctaptypes"
	"github.com/pico-keys/commissioner/pkg/device"
	"github.com/pico-keys/commissioner/pkg/options"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sstallion/go-hid"
)

// EnumerateFIDODevices lists connected HID devices exposing the FIDO
// usage page.
func EnumerateFIDODevices(opts ...options.Option) ([]*hid.DeviceInfo, error) {
	oo := options.NewOptions(opts...)

	devInfos := make([]*hid.DeviceInfo, 0)
	ctx := context.WithValue(oo.Context, device.CtxKeyUseNamedPipe, oo.UseNamedPipe)
	if err := device.Enumerate(ctx, hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		if info.UsagePage != device.FIDOUsagePage || info.Usage != device.FIDOUsage {
			return nil
		}

		devInfos = append(devInfos, info)
		return nil
	}); err != nil {
		return nil, err
	}

	return devInfos, nil
}

// SelectDevice allows selecting a device by confirming presence;
// useful while a user has many tokens connected. Works only with
// FIDO 2.1 tokens (including PRE).
func SelectDevice(opts ...options.Option) (*device.Device, error) {
	oo := options.NewOptions(opts...)

	if oo.Paths == nil {
		devInfos, err := EnumerateFIDODevices(opts...)
		if err != nil {
			return nil, err
		}
		oo.Paths = lo.Map(devInfos, func(devInfo *hid.DeviceInfo, _ int) string {
			return devInfo.Path
		})
	}

	if len(oo.Paths) == 1 {
		return device.New(oo.Paths[0], opts...)
	}

	devices := make([]*device.Device, 0)

	// Carries either the tapped device or the first error.
	selection := make(chan mo.Either[*device.Device, error], len(oo.Paths))

	var wg sync.WaitGroup
	var once sync.Once

	// Canceling the context aborts the Selection() calls still pending
	// on the other devices.
	ctx, cancel := context.WithCancel(oo.Context)
	defer cancel()

	for _, p := range oo.Paths {
		dev, err := device.New(p, opts...)
		if err != nil {
			return nil, err
		}

		info := dev.GetInfo()
		if !info.Versions.Supports(ctaptypes.FIDO_2_1) &&
			!info.Versions.Supports(ctaptypes.FIDO_2_1_PRE) {
			_ = dev.Close()
			continue
		}

		wg.Add(1)
		go func(dev *device.Device) {
			defer wg.Done()

			// Selection() blocks until the device is tapped or ctx is
			// canceled.
			err := dev.Selection(ctx)

			if !errors.Is(ctx.Err(), context.Canceled) {
				once.Do(func() {
					cancel()
					if err != nil {
						selection <- mo.Right[*device.Device, error](err)
						return
					}
					selection <- mo.Left[*device.Device, error](dev)
				})
			}
		}(dev)

		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, errors.New("no supported devices found")
	}

	wg.Wait()

	sel := <-selection
	if err, ok := sel.Right(); ok {
		return nil, err
	}
	selectedDev := sel.MustLeft()

	for _, dev := range devices {
		if selectedDev.Path == dev.Path {
			continue
		}

		if err := dev.Close(); err != nil {
			return nil, err
		}
	}

	return selectedDev, nil
}
