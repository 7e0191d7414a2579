package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/grandcat/zeroconf"
)

// Service is the mDNS service type engine instances announce themselves
// under on the local network.
const Service = "_dsp-engine._tcp"

// Endpoint is one discovered engine control endpoint.
type Endpoint struct {
	Instance string `json:"instance"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// URL returns the websocket URL for dialing the endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("ws://%s:%d", e.Host, e.Port)
}

// Discover browses the local network for engine instances until the timeout
// elapses or the context is cancelled, and returns everything found.
func Discover(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("engine: initializing mDNS resolver: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var found []Endpoint
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			if entry == nil || len(entry.AddrIPv4) == 0 {
				continue
			}
			endpoint := Endpoint{
				Instance: entry.Instance,
				Host:     entry.AddrIPv4[0].String(),
				Port:     entry.Port,
			}
			log.Printf("engine: discovered %s at %s:%d", endpoint.Instance, endpoint.Host, endpoint.Port)
			found = append(found, endpoint)
		}
	}()

	if err := resolver.Browse(browseCtx, Service, "local.", entries); err != nil {
		return nil, fmt.Errorf("engine: browsing for %s: %w", Service, err)
	}

	<-browseCtx.Done()
	<-done
	return found, nil
}
