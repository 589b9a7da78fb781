package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/internal/version"
)

// ServiceType is the DNS-SD service the server announces.
const ServiceType = "_http._tcp"

// Advertiser announces the HTTP server on the local network over mDNS so
// devices on the same LAN (a kiosk, a phone) can find it.
type Advertiser struct {
	server *mdns.Server
	logger *zap.Logger
}

// NewZone builds the mDNS zone for instance listening on port. An empty
// instance uses the product name and host name.
func NewZone(instance string, port int) (*mdns.MDNSService, error) {
	if instance == "" {
		host, _ := os.Hostname()
		instance = version.Product
		if host != "" {
			instance += " on " + host
		}
	}
	txt := []string{
		"path=/api/v1",
		"version=" + version.Short(),
		"docs=/swagger/index.html",
	}
	zone, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, txt)
	if err != nil {
		return nil, fmt.Errorf("mdns zone: %w", err)
	}
	return zone, nil
}

// Advertise starts answering mDNS queries for zone until Close.
func Advertise(zone *mdns.MDNSService, logger *zap.Logger) (*Advertiser, error) {
	srv, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	logger.Info("mDNS advertiser started",
		zap.String("instance", zone.Instance),
		zap.String("service", zone.Service),
		zap.Int("port", zone.Port),
	)
	return &Advertiser{server: srv, logger: logger}, nil
}

// Close stops answering queries.
func (a *Advertiser) Close() error {
	a.logger.Info("mDNS advertiser stopped")
	return a.server.Shutdown()
}
