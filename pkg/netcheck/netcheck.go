package netcheck

import (
	"net"
	"time"
)

// Speed labels returned by Quality. Display-only, never used for gating.
const (
	SpeedHigh   = "high speed"
	SpeedMedium = "medium speed"
	SpeedLow    = "low speed"
	SpeedNone   = "no connection"
)

// Checker reports whether a usable network path currently exists.
type Checker struct {
	target  string
	timeout time.Duration
}

// New builds a Checker that probes the given host:port target.
func New(target string, timeout time.Duration) *Checker {
	if target == "" {
		target = "8.8.8.8:53"
	}
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Checker{target: target, timeout: timeout}
}

// Available reports whether any non-loopback interface is up with an address.
func (c *Checker) Available() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return true
	}
	return false
}

// Online dials the probe target to confirm an actual internet path.
func (c *Checker) Online() bool {
	if !c.Available() {
		return false
	}
	conn, err := net.DialTimeout("tcp", c.target, c.timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Quality returns a coarse speed label based on probe latency.
func (c *Checker) Quality() string {
	if !c.Available() {
		return SpeedNone
	}
	start := time.Now()
	conn, err := net.DialTimeout("tcp", c.target, c.timeout)
	if err != nil {
		return SpeedNone
	}
	_ = conn.Close()
	return ClassifyLatency(time.Since(start))
}

// ClassifyLatency maps a round-trip sample to a speed label.
func ClassifyLatency(rtt time.Duration) string {
	switch {
	case rtt < 50*time.Millisecond:
		return SpeedHigh
	case rtt < 250*time.Millisecond:
		return SpeedMedium
	default:
		return SpeedLow
	}
}
