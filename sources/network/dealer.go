package network

import (
	"fitcoach/sources/configuration"
	"fitcoach/sources/tracing"

	"golang.org/x/net/proxy"
)

// NewProxyDialer returns a SOCKS5 dialer when a proxy is configured and a direct dialer otherwise.
func NewProxyDialer(config *configuration.Config, log *tracing.Logger) (proxy.Dialer, error) {
	if config.Proxy.URL == "" {
		log.I("No egress proxy configured, dialing directly")
		return proxy.Direct, nil
	}

	var auth *proxy.Auth
	if config.Proxy.User != "" {
		auth = &proxy.Auth{User: config.Proxy.User, Password: config.Proxy.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", config.Proxy.URL, auth, proxy.Direct)
	if err != nil {
		log.E("Failed to create proxy dialer", tracing.InnerError, err)
		return nil, err
	}

	log.I("Egress proxy configured", tracing.ProxyUrl, config.Proxy.URL)
	return dialer, nil
}
