package printer

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer sends raw ESC/POS bytes to a receipt printer.
type Printer interface {
	Print(data []byte) error
	// Connected reports whether the device is currently reachable.
	Connected() bool
	Kind() string
}

// Kinds accepted by New.
const (
	KindUSB     = "usb"
	KindNetwork = "network"
	KindNone    = "none"
)

// usbPrinter writes to a character device such as /dev/usb/lp0. The device
// is opened per job so a printer power-cycle does not wedge the process.
type usbPrinter struct {
	path string
}

func (p *usbPrinter) Print(data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Connected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *usbPrinter) Kind() string { return KindUSB }

// networkPrinter speaks raw TCP (port 9100 on most kitchen/bar printers).
type networkPrinter struct {
	address     string
	dialTimeout time.Duration
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Connected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Kind() string { return KindNetwork }

// Recorder keeps every job in memory. It is the printer used when no
// hardware is configured, and lets callers inspect what would have printed.
type Recorder struct {
	mu   sync.Mutex
	Jobs [][]byte
}

func (r *Recorder) Print(data []byte) error {
	job := make([]byte, len(data))
	copy(job, data)
	r.mu.Lock()
	r.Jobs = append(r.Jobs, job)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Connected() bool { return false }

func (r *Recorder) Kind() string { return KindNone }

// New returns the printer for kind. target is the device path for usb and
// host:port for network printers.
func New(kind, target string) (Printer, error) {
	switch kind {
	case KindUSB:
		if target == "" {
			return nil, fmt.Errorf("printer: usb printer needs a device path")
		}
		return &usbPrinter{path: target}, nil
	case KindNetwork:
		if target == "" {
			return nil, fmt.Errorf("printer: network printer needs an address")
		}
		return &networkPrinter{address: target, dialTimeout: 5 * time.Second}, nil
	case KindNone, "":
		return &Recorder{}, nil
	default:
		return nil, fmt.Errorf("printer: unknown kind %q (use usb, network or none)", kind)
	}
}
