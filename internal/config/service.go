package config

import "strings"

// ServiceConfig holds settings for the long-running control API daemon.
type ServiceConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
}

// LoadService reads control API configuration from environment variables.
func LoadService() (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		BindAddr:         getEnvOrDefault("GRABBER_BIND_ADDR", "127.0.0.1:8190"),
		PortAutoFallback: getEnvBoolOrDefault("GRABBER_PORT_AUTO_FALLBACK", true),
	}
	if raw := getEnvOrDefault("GRABBER_PORT_CANDIDATES", ""); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.PortCandidates = append(cfg.PortCandidates, p)
			}
		}
	}
	return cfg, nil
}
