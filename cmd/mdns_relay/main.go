/*
mdns_relay repeats multicast mDNS traffic between network interfaces that are
otherwise isolated from each other, so devices on different segments can still
discover each other.

The device running this program must straddle the networks involved. Every
datagram seen on one relayed interface is repeated out through all the others.
Only datagrams containing the marker string are repeated, and datagrams sent
from one of this host's relayed addresses are never repeated, so the relay
doesn't feed on its own output.

Interfaces are given with -i (repeatable, or comma separated) and/or in a yaml
config file passed with -config:

	interfaces:
	  - eth0
	  - eth1
	marker: blizzard

Run with -list to print the candidate interfaces and exit.

The program recognizes networks by interface name unless
-mapDockerNetworksToInterfaces is passed as a flag in which case the program
recognizes networks by their Docker names.
*/
package main // import "go.jonnrb.io/mdns_relay/cmd/mdns_relay"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.jonnrb.io/mdns_relay/ifaddr"
	"go.jonnrb.io/mdns_relay/relay"
	"go.uber.org/zap"
)

var (
	interfaces  interfaceList
	list        = flag.Bool("list", false, "List the host's interfaces and exit")
	configFile  = flag.String("config", "", "Optional yaml config file")
	marker      = flag.String("marker", "", "Only repeat datagrams containing this string (default \""+relay.DefaultMarker+"\")")
	metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9153")
	verbose     = flag.Bool("v", false, "Debug logging")
)

func init() {
	flag.Var(&interfaces, "i", "Interface to relay across; repeatable, or comma separated")
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if *verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not build logger:", err)
		os.Exit(1)
	}
	return log
}

func openConfig() (Config, error) {
	if *configFile == "" {
		return Config{}, nil
	}

	contents, err := os.ReadFile(*configFile)
	if err != nil {
		return Config{}, fmt.Errorf("could not open config file %q: %w", *configFile, err)
	}

	cfg, err := ParseConfig(contents)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", *configFile, err)
	}

	return cfg, nil
}

func printInterfaces(l ifaddr.Lister) error {
	entries, err := l.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%v\n", e.Name, e.IP)
	}
	return w.Flush()
}

func serveMetrics(log *zap.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		err := http.ListenAndServe(addr, mux)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage %s [-config relay.yml] -i eth0 -i eth1:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(run())
}

func run() int {
	log := newLogger()
	defer log.Sync()

	lister := ifaddr.System()

	if *list {
		if err := printInterfaces(lister); err != nil {
			log.Error("Could not list interfaces", zap.Error(err))
			return 1
		}
		return 0
	}

	cfg, err := openConfig()
	if err != nil {
		log.Error("Bad configuration", zap.Error(err))
		return 1
	}

	names := cfg.InterfaceNames(interfaces)
	if len(names) == 0 {
		log.Error("No interface specified")
		flag.Usage()
		return 1
	}

	resolveName, err := provideResolveName(lister)
	if err != nil {
		log.Error("Could not map Docker networks", zap.Error(err))
		return 1
	}
	for i, n := range names {
		if names[i], err = resolveName(n); err != nil {
			log.Error("Could not resolve network", zap.String("network", n), zap.Error(err))
			return 1
		}
	}

	entries, err := ifaddr.Resolve(names, lister)
	if err != nil {
		log.Error("Could not resolve interfaces", zap.Error(err))
		return 1
	}
	for _, e := range entries {
		log.Info("Relaying mDNS", zap.String("interface", e.Name), zap.Stringer("address", e.IP))
	}

	reg := prometheus.NewRegistry()
	if *metricsAddr != "" {
		serveMetrics(log, *metricsAddr, reg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := relay.Relay{
		Config:     cfg.RelayConfig(*marker),
		Interfaces: entries,
		Logger:     log,
		Metrics:    relay.NewMetrics(reg),
	}
	if err := r.Run(ctx); err != nil {
		log.Error("Relay stopped", zap.Error(err))
		return 1
	}
	return 0
}

