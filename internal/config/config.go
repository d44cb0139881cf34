package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the connection settings for the ESXi or vCenter endpoint.
type Config struct {
	ESXiURL      string
	ESXiPort     int
	ESXiUsername string
	ESXiPassword string
	ESXiInsecure bool
}

// Overrides carries values given on the command line. Zero values leave the
// environment value in place.
type Overrides struct {
	Server   string
	Port     int
	Username string
	Password string
	Insecure *bool
}

// LoadWithOverrides loads configuration from an optional .env file and
// environment variables, applies command line overrides and validates the result.
func LoadWithOverrides(envFile string, o Overrides) (*Config, error) {
	cfg, err := read(envFile, o)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// read gathers configuration from the optional .env file, the environment and
// the overrides without validating it.
func read(envFile string, o Overrides) (*Config, error) {
	// Attempt to load .env file if provided, but don't fail if it doesn't exist.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	port, err := parsePort(os.Getenv("ESXI_PORT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ESXiURL:      os.Getenv("ESXI_URL"),
		ESXiPort:     port,
		ESXiUsername: os.Getenv("ESXI_USERNAME"),
		ESXiPassword: os.Getenv("ESXI_PASSWORD"),
		ESXiInsecure: parseInsecure(os.Getenv("ESXI_INSECURE")),
	}
	cfg.apply(o)
	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.Server != "" {
		c.ESXiURL = o.Server
	}
	if o.Port != 0 {
		c.ESXiPort = o.Port
	}
	if o.Username != "" {
		c.ESXiUsername = o.Username
	}
	if o.Password != "" {
		c.ESXiPassword = o.Password
	}
	if o.Insecure != nil {
		c.ESXiInsecure = *o.Insecure
	}
}

// Validate checks if all required fields are set.
func (c *Config) Validate() error {
	if c.ESXiURL == "" {
		return fmt.Errorf("ESXI_URL is required")
	}
	if c.ESXiUsername == "" {
		return fmt.Errorf("ESXI_USERNAME is required")
	}
	if c.ESXiPassword == "" {
		return fmt.Errorf("ESXI_PASSWORD is required")
	}
	if c.ESXiPort < 0 || c.ESXiPort > 65535 {
		return fmt.Errorf("ESXI_PORT %d is out of range", c.ESXiPort)
	}
	return nil
}

// ServerURL returns the endpoint address. A bare host gets the configured
// port appended; full URLs and host:port pairs are returned unchanged.
func (c *Config) ServerURL() string {
	if c.ESXiPort == 0 || strings.Contains(c.ESXiURL, "://") {
		return c.ESXiURL
	}
	if _, _, err := net.SplitHostPort(c.ESXiURL); err == nil {
		return c.ESXiURL
	}
	return net.JoinHostPort(c.ESXiURL, strconv.Itoa(c.ESXiPort))
}

// parseInsecure converts a string to a boolean, defaulting to false.
func parseInsecure(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ESXI_PORT %q: %w", s, err)
	}
	return port, nil
}
