package storage

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// gatewayFetcher fetches documents from a public IPFS HTTP gateway. It is
// the read-only fallback used when the Kubo node is not reachable.
type gatewayFetcher struct {
	endpoint string
	client   *http.Client
}

func newGatewayFetcher(endpoint string) Fetcher {
	return &gatewayFetcher{endpoint: endpoint, client: http.DefaultClient}
}

// Fetch performs an HTTP GET of {endpoint}{cid} and returns the response
// body. The endpoint must carry a trailing slash if the gateway requires one
// (e.g. "https://ipfs.io/ipfs/").
func (g *gatewayFetcher) Fetch(ctx context.Context, cID string) ([]byte, error) {
	if g.endpoint == "" {
		return nil, errs.New(errs.InvalidConfig, "gateway url not configured")
	}

	zap.L().Debug("fetching document from gateway", zap.String("cid", cID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+cID, nil)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "build gateway request", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, "gateway fetch", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			zap.L().Error("error closing gateway response", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.Newf(errs.LicenseNotFound, "document %s not found on gateway", cID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf(errs.NetworkError, "gateway returned status %d for %s", resp.StatusCode, cID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, "read gateway response", err)
	}
	return body, nil
}
