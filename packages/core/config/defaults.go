package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Mode:            "live",
		Timeout:         30000, // 30 seconds
		FollowRedirects: BoolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     BoolPtr(true),
		Output:          "console",
	}
}

// IsDefault reports whether c matches DefaultConfig.
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.Mode == d.Mode &&
		c.BaseURL == "" &&
		c.Timeout == d.Timeout &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.MaxRedirects == d.MaxRedirects &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.Proxy == "" &&
		len(c.Headers) == 0 &&
		len(c.Variables) == 0 &&
		c.EnvFile == "" &&
		c.Output == d.Output &&
		c.Rate == 0 &&
		!c.GetBail() &&
		!c.GetVerbose() &&
		!c.GetNoColor()
}
