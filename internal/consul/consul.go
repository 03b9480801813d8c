// Package consul registers this service in the service catalog and looks up
// peers by name.
package consul

import (
	"fmt"
	"os"

	consulapi "github.com/hashicorp/consul/api"
)

// NewClient connects to the consul agent at CONSUL_HOST:CONSUL_PORT.
func NewClient() (*consulapi.Client, error) {
	host := os.Getenv("CONSUL_HOST")
	port := os.Getenv("CONSUL_PORT")
	if host == "" || port == "" {
		return nil, fmt.Errorf("consul host or port is empty")
	}

	config := consulapi.DefaultConfig()
	config.Address = host + ":" + port
	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}

// RegisterService adds this instance to the catalog under serviceName.
func RegisterService(client *consulapi.Client, serviceName, address string, port int) error {
	registration := &consulapi.AgentServiceRegistration{
		ID:      serviceName + "-" + address,
		Name:    serviceName,
		Address: address,
		Port:    port,
	}
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service %s: %w", serviceName, err)
	}
	return nil
}

// GetServiceAddress resolves one healthy instance of serviceName.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	services, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query service %s: %w", serviceName, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of service %s", serviceName)
	}

	service := services[0].Service
	return service.Address, service.Port, nil
}
