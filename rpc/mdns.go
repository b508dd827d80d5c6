package rpc

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/viamrobotics/zeroconf"
)

// mdnsServiceName is the service type this module's servers advertise and
// clients browse for.
const mdnsServiceName = "_rpc._tcp"

const (
	mdnsQueryInterval = 250 * time.Millisecond
	mdnsListenTimeout = 1500 * time.Millisecond
)

// resolveViaMDNS looks up host via mDNS, returning the discovered
// "ip:port" address, or ("", nil) if nothing answered within the listen
// window. It also tries the dot-to-dash candidate (host with '.' replaced by
// '-') since some publishers register instance names that way.
func resolveViaMDNS(ctx context.Context, host string) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", errors.Wrap(err, "error creating mdns resolver")
	}

	ctx, cancel := context.WithTimeout(ctx, mdnsListenTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(ctx, mdnsServiceName, "local.", entries); err != nil {
		return "", errors.Wrap(err, "error browsing mdns")
	}

	candidates := mdnsCandidates(host)

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return "", nil
			}
			if entry == nil {
				continue
			}
			if !matchesAny(entry.Instance, candidates) {
				continue
			}
			if addr := firstIPv4Address(entry); addr != "" {
				return addr, nil
			}
		case <-ctx.Done():
			return "", nil
		}
	}
}

// mdnsCandidates returns the instance names to match against discovered
// entries: the host with any ".local" suffix removed, and, when it differs,
// its dot-to-dash variant.
func mdnsCandidates(host string) []string {
	name := strings.TrimSuffix(host, ".local")
	dashed := strings.ReplaceAll(name, ".", "-")
	if dashed == name {
		return []string{name}
	}
	return []string{name, dashed}
}

func matchesAny(instance string, candidates []string) bool {
	for _, c := range candidates {
		if instance == c {
			return true
		}
	}
	return false
}

func firstIPv4Address(entry *zeroconf.ServiceEntry) string {
	for _, ip := range entry.AddrIPv4 {
		if ip == nil || ip.IsUnspecified() {
			continue
		}
		return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port))
	}
	return ""
}
