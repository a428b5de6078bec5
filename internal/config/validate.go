package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYtDlp(); err != nil {
		return err
	}
	if err := c.validateAPIs(); err != nil {
		return err
	}
	if err := c.validateProxy(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYtDlp() error {
	if c.YtDlp.Timeout <= 0 {
		return errors.New("ytdlp.timeout must be positive")
	}
	return nil
}

func (c *Config) validateAPIs() error {
	if c.APIs.Timeout <= 0 {
		return errors.New("apis.timeout must be positive")
	}
	for key, value := range map[string]string{
		"apis.primary_url":        c.APIs.PrimaryURL,
		"apis.secondary_json_url": c.APIs.SecondaryJSONURL,
		"apis.secondary_xml_url":  c.APIs.SecondaryXMLURL,
	} {
		if value == "" {
			continue
		}
		if err := validateHTTPURL(key, value); err != nil {
			return err
		}
	}
	if c.APIs.SecondaryXMLURL != "" && c.APIs.SecondaryJSONURL == "" {
		return errors.New("apis.secondary_xml_url requires apis.secondary_json_url")
	}
	return nil
}

func (c *Config) validateProxy() error {
	return validateHTTPURL("proxy.health_check_url", c.Proxy.HealthCheckURL)
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format must be one of console, json (got %q)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL (got %q)", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host (got %q)", key, value)
	}
	return nil
}
