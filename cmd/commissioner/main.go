// Command commissioner is an interactive configuration tool for Pico
// FIDO security keys: PIN management, vendor hardware knobs (LED, PHY
// options, USB identity, button timeout) and factory reset.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"
	"github.com/pico-keys/commissioner/pkg/device"
	"github.com/pico-keys/commissioner/pkg/options"
	"github.com/pico-keys/commissioner/pkg/sugar"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	path := flag.String("path", "", "HID path of the device (skips enumeration)")
	namedPipe := flag.Bool("named-pipe", false, "use the elevated HID proxy pipe (Windows)")
	flag.Parse()

	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	if *debug {
		lvl.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))

	opts := []options.Option{options.WithLogger(logger)}
	if *path != "" {
		opts = append(opts, options.WithPaths(*path))
	}
	if *namedPipe {
		opts = append(opts, options.WithUseNamedPipes())
	}

	dev, err := sugar.SelectDevice(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open device: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = dev.Close()
	}()

	fmt.Println("Pico FIDO Commissioner")
	showInfo(dev)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println()
		fmt.Println("1) Device info")
		fmt.Println("2) Set PIN")
		fmt.Println("3) Change PIN")
		fmt.Println("4) Button timeout")
		fmt.Println("5) LED GPIO pin")
		fmt.Println("6) LED brightness")
		fmt.Println("7) PHY options")
		fmt.Println("8) USB VID/PID")
		fmt.Println("9) Factory reset")
		fmt.Println("0) Quit")

		choice, ok := prompt(in, "> ")
		if !ok {
			return
		}

		var err error
		switch choice {
		case "1":
			showInfo(dev)
		case "2":
			err = setPIN(in, dev)
		case "3":
			err = changePIN(in, dev)
		case "4":
			err = withAuth(in, dev, func() error { return buttonTimeout(in, dev) })
		case "5":
			err = withAuth(in, dev, func() error { return ledGpio(in, dev) })
		case "6":
			err = withAuth(in, dev, func() error { return ledBrightness(in, dev) })
		case "7":
			err = withAuth(in, dev, func() error { return phyOptions(in, dev) })
		case "8":
			err = withAuth(in, dev, func() error { return vidPid(in, dev) })
		case "9":
			err = factoryReset(in, dev)
		case "0", "q", "quit":
			return
		default:
			continue
		}

		if err != nil {
			fmt.Printf("error: %v\n", explain(err))
		}
	}
}

func prompt(in *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func promptInt(in *bufio.Scanner, label string) (int, error) {
	s, ok := prompt(in, label)
	if !ok {
		return 0, errors.New("aborted")
	}
	return strconv.Atoi(s)
}

func showInfo(dev *device.Device) {
	info := dev.GetInfo()

	fmt.Printf("Versions:   %v\n", info.Versions)
	fmt.Printf("AAGUID:     %s\n", info.AAGUID)
	fmt.Printf("Firmware:   %d\n", info.FirmwareVersion)
	fmt.Printf("PIN set:    %t\n", info.Options[ctaptypes.OptionClientPIN])
	fmt.Printf("Min PIN:    %d\n", info.MinPinLength)
	fmt.Printf("Vendor cfg: %t\n", info.SupportsVendorConfig())
}

// withAuth makes sure the session holds a config-scoped token before
// running fn.
func withAuth(in *bufio.Scanner, dev *device.Device, fn func() error) error {
	if dev.State() != device.StateReady {
		pin, ok := prompt(in, "PIN: ")
		if !ok {
			return errors.New("aborted")
		}
		if err := dev.Authenticate(pin); err != nil {
			return err
		}
	}

	return fn()
}

func setPIN(in *bufio.Scanner, dev *device.Device) error {
	pin, ok := prompt(in, "New PIN: ")
	if !ok {
		return errors.New("aborted")
	}
	confirm, ok := prompt(in, "Repeat PIN: ")
	if !ok {
		return errors.New("aborted")
	}
	if pin != confirm {
		return errors.New("PINs do not match")
	}

	if err := dev.SetPIN(pin); err != nil {
		return err
	}

	fmt.Println("PIN set")
	return nil
}

func changePIN(in *bufio.Scanner, dev *device.Device) error {
	current, ok := prompt(in, "Current PIN: ")
	if !ok {
		return errors.New("aborted")
	}
	pin, ok := prompt(in, "New PIN: ")
	if !ok {
		return errors.New("aborted")
	}

	if err := dev.ChangePIN(current, pin); err != nil {
		return err
	}

	fmt.Println("PIN changed")
	return nil
}

func buttonTimeout(in *bufio.Scanner, dev *device.Device) error {
	fmt.Println("Seconds to wait for the button press, 0 disables the confirmation.")
	seconds, err := promptInt(in, "Timeout (0-255): ")
	if err != nil {
		return err
	}

	if err := dev.SetButtonTimeout(seconds); err != nil {
		return err
	}

	if seconds == 0 {
		fmt.Println("Button confirmation disabled")
	} else {
		fmt.Printf("Button timeout set to %d seconds\n", seconds)
	}
	return nil
}

func ledGpio(in *bufio.Scanner, dev *device.Device) error {
	pin, err := promptInt(in, "GPIO pin (0-29): ")
	if err != nil {
		return err
	}

	if err := dev.SetLedGpio(pin); err != nil {
		return err
	}

	fmt.Printf("LED GPIO set to pin %d\n", pin)
	return nil
}

func ledBrightness(in *bufio.Scanner, dev *device.Device) error {
	level, err := promptInt(in, "Brightness (0-255): ")
	if err != nil {
		return err
	}

	if err := dev.SetLedBrightness(level); err != nil {
		return err
	}

	fmt.Printf("LED brightness set to %d\n", level)
	return nil
}

func phyOptions(in *bufio.Scanner, dev *device.Device) error {
	fmt.Println("PHY option bits:")
	fmt.Println("  1 WebCCID interface")
	fmt.Println("  2 Dim LED")
	fmt.Println("  4 Disable 10s power-on reset window")
	fmt.Println("  8 Steady LED")

	value, err := promptInt(in, "Options value (0-15): ")
	if err != nil {
		return err
	}
	if value < 0 || value > 255 {
		return errors.New("value out of range")
	}

	if err := dev.SetPhyOptions(ctaptypes.PhyOptions(value)); err != nil {
		return err
	}

	fmt.Printf("PHY options set to %d\n", value)
	return nil
}

func vidPid(in *bufio.Scanner, dev *device.Device) error {
	fmt.Println("WARNING: a wrong VID/PID can make the device unrecognizable.")
	confirm, ok := prompt(in, "Continue? (yes/no): ")
	if !ok || confirm != "yes" {
		return errors.New("aborted")
	}

	vidStr, ok := prompt(in, "VID (hex): ")
	if !ok {
		return errors.New("aborted")
	}
	vid, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(vidStr), "0x"), 16, 16)
	if err != nil {
		return err
	}

	pidStr, ok := prompt(in, "PID (hex): ")
	if !ok {
		return errors.New("aborted")
	}
	pid, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(pidStr), "0x"), 16, 16)
	if err != nil {
		return err
	}

	final, ok := prompt(in, fmt.Sprintf("Set VID/PID to %04X:%04X? (type YES): ", vid, pid))
	if !ok || final != "YES" {
		return errors.New("aborted")
	}

	if err := dev.SetVidPid(uint16(vid), uint16(pid)); err != nil {
		return err
	}

	fmt.Println("VID/PID set, replug the device to apply")
	return nil
}

func factoryReset(in *bufio.Scanner, dev *device.Device) error {
	fmt.Println("Factory reset wipes all credentials and settings.")
	fmt.Println("Most devices accept it only within 10 seconds after plugging in.")
	confirm, ok := prompt(in, "Type RESET to proceed: ")
	if !ok || confirm != "RESET" {
		return errors.New("aborted")
	}

	fmt.Println("Press the device button when it blinks...")

	// Hold the channel lock while the user confirms, so no other
	// client can slip a request in between.
	if err := dev.Lock(10); err == nil {
		defer func() { _ = dev.Lock(0) }()
	}

	if err := dev.Reset(); err != nil {
		return err
	}

	fmt.Println("Device reset to factory state")
	return nil
}

// explain augments common CTAP statuses with a hint about what to do.
func explain(err error) string {
	var ctapErr *ctaphid.CTAPError
	if errors.As(err, &ctapErr) {
		switch ctapErr.StatusCode {
		case ctaphid.CTAP2_ERR_NOT_ALLOWED:
			return err.Error() + ": replug the device and retry within 10 seconds"
		case ctaphid.CTAP2_ERR_USER_ACTION_TIMEOUT:
			return err.Error() + ": button was not pressed in time"
		case ctaphid.CTAP2_ERR_PIN_INVALID:
			return err.Error() + ": wrong PIN"
		case ctaphid.CTAP2_ERR_PIN_BLOCKED:
			return err.Error() + ": PIN blocked, factory reset required"
		}
	}

	return err.Error()
}
