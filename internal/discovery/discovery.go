// Package discovery finds Samsung TVs and cast targets on the local
// network over mDNS. Samsung TVs advertise their remote-control API as
// _samsungmsf._tcp, so a hit there is a device the remote can talk to.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"zapper/internal/logger"
)

const (
	// ServiceSamsung is the mDNS service Samsung TVs advertise for their
	// remote-control API
	ServiceSamsung = "_samsungmsf._tcp"

	// ServiceCast is the mDNS service cast targets advertise
	ServiceCast = "_googlecast._tcp"

	mdnsDomain = "local."

	// DefaultTimeout is how long a single browse waits for responses
	DefaultTimeout = 3 * time.Second

	// cacheTTL keeps results around so back-to-back lookups don't rescan
	cacheTTL = 30 * time.Second
)

// Found describes a single discovered device
type Found struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Host    string `json:"host"`
	IP      string `json:"ip"`
	Port    int    `json:"port"`
}

// IsTV reports whether the device speaks the Samsung remote API
func (f Found) IsTV() bool {
	return f.Service == ServiceSamsung
}

// Browser runs mDNS browses with a short-lived result cache
type Browser struct {
	cache  *expirable.LRU[string, []Found]
	browse func(ctx context.Context, service string) ([]Found, error)
	logger zerolog.Logger
}

// NewBrowser creates a Browser with an empty cache
func NewBrowser() *Browser {
	browser := &Browser{
		cache:  expirable.NewLRU[string, []Found](8, nil, cacheTTL),
		logger: logger.New(),
	}
	browser.browse = browseService
	return browser
}

// Browse scans for Samsung TVs and cast targets, returning everything
// found within the timeout. Cached results are reused while fresh.
func (b *Browser) Browse(ctx context.Context, timeout time.Duration) ([]Found, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Found, 0)
	for _, service := range []string{ServiceSamsung, ServiceCast} {
		entries, err := b.lookup(ctx, service, timeout)
		if err != nil {
			return nil, err
		}
		results = append(results, entries...)
	}

	return results, nil
}

// FirstTV returns the first Samsung TV found on the network
func (b *Browser) FirstTV(ctx context.Context, timeout time.Duration) (*Found, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	entries, err := b.lookup(ctx, ServiceSamsung, timeout)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no Samsung TV found on the network")
	}

	return &entries[0], nil
}

func (b *Browser) lookup(ctx context.Context, service string, timeout time.Duration) ([]Found, error) {
	if cached, ok := b.cache.Get(service); ok {
		b.logger.Debug().
			Str("service", service).
			Int("count", len(cached)).
			Msg("Using cached discovery results")
		return cached, nil
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries, err := b.browse(browseCtx, service)
	if err != nil {
		return nil, fmt.Errorf("failed to browse %s: %w", service, err)
	}

	b.logger.Debug().
		Str("service", service).
		Int("count", len(entries)).
		Msg("Discovery browse complete")
	b.cache.Add(service, entries)
	return entries, nil
}

// browseService runs one zeroconf browse and collects entries until the
// context expires
func browseService(ctx context.Context, service string) ([]Found, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var found []Found
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			found = append(found, fromEntry(service, entry))
		}
	}()

	if err := resolver.Browse(ctx, service, mdnsDomain, entries); err != nil {
		return nil, fmt.Errorf("mDNS browse failed: %w", err)
	}

	// The resolver closes the channel once the context expires
	<-done
	return found, nil
}

func fromEntry(service string, entry *zeroconf.ServiceEntry) Found {
	ip := ""
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	return Found{
		Name:    entry.Instance,
		Service: service,
		Host:    strings.TrimSuffix(entry.HostName, "."),
		IP:      ip,
		Port:    entry.Port,
	}
}
