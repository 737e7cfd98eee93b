package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr         string
	AllowedHosts []string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("MODKIT_ADDR"),
		},
		&cli.StringSliceFlag{
			Name:        "allowed-host",
			Usage:       "Host or Origin name accepted besides loopback names; repeatable",
			Destination: &c.AllowedHosts,
			Sources:     cli.EnvVars("MODKIT_ALLOWED_HOSTS"),
		},
	}
}
