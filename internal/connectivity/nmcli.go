package connectivity

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/sweeney/float-alarm/internal/logger"
)

// connectTimeout bounds a single background nmcli connect.
const connectTimeout = 45 * time.Second

// NMRadio drives Wi-Fi through NetworkManager's nmcli.
type NMRadio struct {
	iface string

	// inFlight is set while a background connect is running.
	inFlight atomic.Bool
}

// NewNMRadio creates a radio for the given wireless interface.
func NewNMRadio(iface string) *NMRadio {
	return &NMRadio{iface: iface}
}

// Activate turns the Wi-Fi radio on.
func (r *NMRadio) Activate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nmcli", activateArgs()...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli radio wifi on: %w: %s", err, out)
	}
	return nil
}

// Connect starts nmcli in the background and returns immediately.
// A request made while the previous one is still running is dropped.
func (r *NMRadio) Connect(ssid, passphrase string) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		logger.Debugf("wifi connect already in progress")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	cmd := exec.CommandContext(ctx, "nmcli", connectArgs(r.iface, ssid, passphrase)...)
	if err := cmd.Start(); err != nil {
		cancel()
		r.inFlight.Store(false)
		return fmt.Errorf("start nmcli: %w", err)
	}

	go func() {
		defer cancel()
		defer r.inFlight.Store(false)
		if err := cmd.Wait(); err != nil {
			logger.Warnf("nmcli connect %q: %v", ssid, err)
		}
	}()
	return nil
}

// IsConnected reports whether the interface is up with a routable address.
func (r *NMRadio) IsConnected() bool {
	ifi, err := net.InterfaceByName(r.iface)
	if err != nil || ifi.Flags&net.FlagUp == 0 {
		return false
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return false
	}
	return hasRoutableAddr(addrs)
}

func hasRoutableAddr(addrs []net.Addr) bool {
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if ok && ipn.IP.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

func activateArgs() []string {
	return []string{"radio", "wifi", "on"}
}

func connectArgs(iface, ssid, passphrase string) []string {
	args := []string{"device", "wifi", "connect", ssid}
	if passphrase != "" {
		args = append(args, "password", passphrase)
	}
	return append(args, "ifname", iface)
}
