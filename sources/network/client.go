package network

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/tracing"

	"golang.org/x/net/proxy"
)

func NewProxyClient(dialer proxy.Dialer, config *configuration.Config, log *tracing.Logger) *http.Client {
	dc := func(ctx context.Context, network, address string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, address)
		}
		return dialer.Dial(network, address)
	}

	// The client timeout is only a ceiling; answer and plan calls carry their own deadlines.
	timeout := max(
		time.Duration(config.Network.TimeoutSeconds)*time.Second,
		config.Answers.GenerationTimeout,
		config.Plans.Timeout,
	)

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dc,
			MaxIdleConns:          20,
			IdleConnTimeout:       10 * time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 5 * time.Second,
			MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
			OnProxyConnectResponse: func(ctx context.Context, proxyURL *url.URL, connectReq *http.Request, connectRes *http.Response) error {
				log.I("Connected to proxy", tracing.ProxyUrl, proxyURL.String(), tracing.ProxyRes, connectRes.Status)
				return nil
			},
		},
	}
}
