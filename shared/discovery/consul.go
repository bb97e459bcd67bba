// Package discovery registers services in Consul.
package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	consul "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes one service instance.
type Registration struct {
	Name    string
	Address string
	Port    int
}

// ConsulRegistry registers a single instance and removes it again on Deregister.
type ConsulRegistry struct {
	client *consul.Client
	id     string
	logger *zerolog.Logger
}

// NewConsulRegistry creates a registry talking to the agent at addr.
func NewConsulRegistry(addr string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// Register adds the instance with a gRPC health check against its health service.
func (r *ConsulRegistry) Register(reg Registration) error {
	r.id = reg.Name + "-" + uuid.NewString()

	hostPort := net.JoinHostPort(reg.Address, strconv.Itoa(reg.Port))
	err := r.client.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		ID:      r.id,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Check: &consul.AgentServiceCheck{
			GRPC:                           hostPort + "/" + reg.Name,
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to register %s in consul: %w", reg.Name, err)
	}

	r.logger.Info().Str("id", r.id).Str("address", hostPort).Msg("registered in consul")
	return nil
}

// Deregister removes the instance registered last.
func (r *ConsulRegistry) Deregister() {
	if r.id == "" {
		return
	}

	if err := r.client.Agent().ServiceDeregister(r.id); err != nil {
		r.logger.Warn().Err(err).Str("id", r.id).Msg("failed to deregister from consul")
		return
	}
	r.logger.Info().Str("id", r.id).Msg("deregistered from consul")
}
