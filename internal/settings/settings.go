package settings

import (
	"strings"
	"time"
)

const (
	defaultKernelPort    = 8888
	defaultKernelBinary  = "jupyter"
	defaultProbeInterval = 100 * time.Millisecond
	defaultProbeTimeout  = 15 * time.Second
)

// Settings is the immutable configuration consumed by the supervisor and the
// gateway. Loaded once at init; read-only afterwards.
type Settings struct {
	KernelPort     int      `toml:"kernel_port"`
	KernelBinary   string   `toml:"kernel_binary"`
	LaunchArgs     []string `toml:"launch_args"`
	FileSystemRoot string   `toml:"filesystem_root"`
	ContentRoot    string   `toml:"content_root"`

	Proxy ProxySettings `toml:"proxy"`
	Probe ProbeSettings `toml:"probe"`
}

// ProxySettings optionally redirects gateway traffic to a host/port distinct
// from the spawn address, e.g. when an intermediary sits in front of the
// kernel. Empty host and zero port mean "proxy straight to the kernel".
type ProxySettings struct {
	TargetHost     string   `toml:"target_host"`
	TargetPort     int      `toml:"target_port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type ProbeSettings struct {
	IntervalMS int `toml:"interval_ms"`
	TimeoutMS  int `toml:"timeout_ms"`
}

func (p ProbeSettings) Interval() time.Duration {
	if p.IntervalMS <= 0 {
		return defaultProbeInterval
	}
	return time.Duration(p.IntervalMS) * time.Millisecond
}

func (p ProbeSettings) Timeout() time.Duration {
	if p.TimeoutMS <= 0 {
		return defaultProbeTimeout
	}
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

func Normalize(s Settings) Settings {
	if s.KernelPort <= 0 {
		s.KernelPort = defaultKernelPort
	}
	s.KernelBinary = strings.TrimSpace(s.KernelBinary)
	if s.KernelBinary == "" {
		s.KernelBinary = defaultKernelBinary
	}
	s.FileSystemRoot = strings.TrimSpace(s.FileSystemRoot)
	if s.FileSystemRoot == "" {
		s.FileSystemRoot = "."
	}
	s.ContentRoot = strings.TrimSpace(s.ContentRoot)
	if s.ContentRoot == "" {
		s.ContentRoot = s.FileSystemRoot
	}
	s.Proxy.TargetHost = strings.TrimSpace(s.Proxy.TargetHost)
	if s.Proxy.TargetPort < 0 {
		s.Proxy.TargetPort = 0
	}
	origins := make([]string, 0, len(s.Proxy.AllowedOrigins))
	for _, o := range s.Proxy.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	s.Proxy.AllowedOrigins = origins
	if s.Probe.IntervalMS < 0 {
		s.Probe.IntervalMS = 0
	}
	if s.Probe.TimeoutMS < 0 {
		s.Probe.TimeoutMS = 0
	}
	return s
}
