package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	docker "github.com/docker/docker/client"
	"go.jonnrb.io/mdns_relay/ifaddr"
)

var (
	mapDockerNetworksToInterfaces = flag.Bool("mapDockerNetworksToInterfaces", false, "Treat interface names as Docker network names of this container")
)

// If mapDockerNetworksToInterfaces is not set, network names are literal system
// interface names. Otherwise they correspond to Docker network names for
// networks connected to this container, which is looked up by hostname.
func provideResolveName(l ifaddr.Lister) (func(string) (string, error), error) {
	if !*mapDockerNetworksToInterfaces {
		return func(name string) (string, error) { return name, nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cli, err := docker.NewEnvClient()
	if err != nil {
		return nil, fmt.Errorf("could not create docker client: %w", err)
	}
	hn, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	j, err := cli.ContainerInspect(ctx, hn)
	if err != nil {
		return nil, fmt.Errorf("could not inspect container %q: %w", hn, err)
	}
	if j.NetworkSettings == nil {
		return nil, fmt.Errorf("container %q has no network settings", hn)
	}

	addrs := make(map[string]string, len(j.NetworkSettings.Networks))
	for name, n := range j.NetworkSettings.Networks {
		if n != nil {
			addrs[name] = n.IPAddress
		}
	}
	return networkResolver(addrs, l), nil
}

// networkResolver maps a Docker network name to the local interface holding
// the container's address on it. addrs is keyed by network name.
func networkResolver(addrs map[string]string, l ifaddr.Lister) func(string) (string, error) {
	return func(dnet string) (string, error) {
		s, ok := addrs[dnet]
		if !ok {
			return "", fmt.Errorf("network %q not found on container info", dnet)
		}
		ip := net.ParseIP(s)
		if ip == nil {
			return "", fmt.Errorf("could not parse container ip address %q on %q", s, dnet)
		}
		return interfaceForIP(ip, l)
	}
}

func interfaceForIP(ip net.IP, l ifaddr.Lister) (string, error) {
	entries, err := l.List()
	if err != nil {
		return "", fmt.Errorf("error listing interfaces: %v", err)
	}
	for _, e := range entries {
		if e.IP.Equal(ip) {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("could not find interface for ip %v", ip)
}
