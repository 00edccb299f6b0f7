package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// IpfsPrefix is the URI scheme prefix recognized for IPFS-hosted documents.
const IpfsPrefix = "ipfs://"

const defaultTimeout = 60 * time.Second

// Storage abstracts a backend able to store and retrieve license metadata
// documents by URI.
type Storage interface {
	ReadDocument(ctx context.Context, uri string) ([]byte, error)
	UploadJSON(ctx context.Context, v any) (string, error)
}

// Fetcher fetches content addressed by CID.
type Fetcher interface {
	Fetch(ctx context.Context, cid string) ([]byte, error)
}

// Client reads and writes metadata documents on IPFS via a Kubo HTTP API
// node, falling back to a public HTTP gateway for reads when the node is
// unreachable.
type Client struct {
	api        *rpc.HttpApi
	gatewayURL string

	nodeFetcher    Fetcher
	gatewayFetcher Fetcher
}

var _ Storage = (*Client)(nil)

// NewClient constructs a storage client using the provided IPFS API endpoint
// and HTTP gateway URL. If the IPFS client fails to initialize, the error is
// logged and reads degrade to the gateway; uploads will fail.
func NewClient(ipfsURL, gatewayURL string) *Client {
	c := &Client{gatewayURL: gatewayURL}

	api, err := NewIPFSClient(ipfsURL)
	if err != nil {
		zap.L().Error("ipfs client unavailable, reads will use the gateway",
			zap.String("url", ipfsURL), zap.Error(err))
	} else {
		c.api = api
	}

	c.nodeFetcher = newNodeFetcher(c.api)
	c.gatewayFetcher = newGatewayFetcher(gatewayURL)
	return c
}

// ReadDocument fetches the document identified by uri. The URI is normalized
// with formatCID before retrieval. If the Kubo node read fails and a gateway
// is configured, the gateway is tried before giving up.
func (c *Client) ReadDocument(ctx context.Context, uri string) ([]byte, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
	}

	id := formatCID(uri)
	if id == "" {
		return nil, errs.Newf(errs.InvalidMetadata, "empty document uri %q", uri)
	}

	data, err := c.nodeFetcher.Fetch(ctx, id)
	if err == nil {
		return data, nil
	}
	if c.gatewayURL == "" {
		return nil, err
	}

	zap.L().Debug("ipfs node read failed, falling back to gateway",
		zap.String("cid", id), zap.Error(err))
	data, gwErr := c.gatewayFetcher.Fetch(ctx, id)
	if gwErr != nil {
		return nil, err
	}
	return data, nil
}

// UploadJSON serializes v to JSON and adds it to IPFS through the Kubo node.
// Returns the document URI (ipfs://<cid>) on success.
func (c *Client) UploadJSON(ctx context.Context, v any) (string, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
	}

	jsonData, err := json.Marshal(v)
	if err != nil {
		return "", errs.Wrap(errs.InvalidMetadata, "marshal document", err)
	}

	uploader, ok := c.nodeFetcher.(*nodeFetcher)
	if !ok || uploader.api == nil {
		return "", errs.New(errs.InvalidConfig, "ipfs node not configured, uploads unavailable")
	}
	return uploader.Upload(ctx, jsonData)
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
// The client uses a short HTTP timeout suitable for metadata documents.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 5 * time.Second,
	}
	return rpc.NewURLApiWithClient(url, &httpClient)
}

// formatCID strips the ipfs:// scheme and any non-alphanumeric characters
// (except '=') from the supplied URI to produce a clean CID string.
func formatCID(uri string) string {
	uri = strings.Replace(uri, IpfsPrefix, "", -1)
	return removeSpecialCharacters(uri)
}

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString. Used to sanitize incoming CIDs.
func removeSpecialCharacters(pString string) string {
	reg := regexp.MustCompile("[^a-zA-Z0-9=]")
	return reg.ReplaceAllString(pString, "")
}
