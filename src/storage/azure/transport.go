package azure

import (
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

func newTransport(maxConcurrency int) (*http.Transport, error) {
	perHost := 64
	if maxConcurrency > perHost {
		perHost = maxConcurrency
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4 * perHost,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if _, err := http2.ConfigureTransports(t); err != nil {
		return nil, errors.Wrap(err, "configuring HTTP/2 transport")
	}
	return t, nil
}

func clientOptions(opts Options) (*azblob.ClientOptions, error) {
	t, err := newTransport(opts.MaxConcurrency)
	if err != nil {
		return nil, err
	}
	return &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: &http.Client{Transport: t},
			Retry: policy.RetryOptions{
				MaxRetries: opts.SDKRetries,
			},
		},
	}, nil
}
