package transport

import (
	"net"
	"strings"
)

// Platform names the device family the assistant runs on.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// ServicePort is the port the backend listens on in development.
const ServicePort = "8000"

// ResolveBaseURL picks the backend root. devHost is the "host:port" the
// development bundle was served from; a non-loopback host means the backend
// runs on that machine. Otherwise the platform's loopback address is used,
// which for the Android emulator is the host alias 10.0.2.2.
func ResolveBaseURL(devHost string, platform Platform) string {
	if host := hostOnly(devHost); host != "" && host != "localhost" && host != "127.0.0.1" {
		return "http://" + net.JoinHostPort(host, ServicePort)
	}
	switch platform {
	case PlatformAndroid:
		return "http://10.0.2.2:" + ServicePort
	default:
		return "http://localhost:" + ServicePort
	}
}

func hostOnly(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
