package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// nodeFetcher is the Kubo HTTP API implementation of Fetcher.
type nodeFetcher struct {
	api *rpc.HttpApi
}

func newNodeFetcher(api *rpc.HttpApi) Fetcher {
	return &nodeFetcher{api: api}
}

// Fetch retrieves content by CID from IPFS using the configured Kubo HTTP
// API client. The supplied id is parsed as a CID and retrieved via
// `ipfs cat`.
func (f *nodeFetcher) Fetch(ctx context.Context, id string) ([]byte, error) {
	if f.api == nil {
		return nil, errs.New(errs.InvalidConfig, "ipfs node not configured")
	}

	cID, err := cid.Parse(id)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidMetadata, "parse document cid", err)
	}

	resp, err := f.api.Request("cat", cID.String()).Send(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, "ipfs cat", err)
	}
	defer func() {
		if closeErr := resp.Close(); closeErr != nil {
			zap.L().Error("error closing ipfs response", zap.String("cid", id), zap.Error(closeErr))
		}
	}()
	if resp.Error != nil {
		return nil, errs.Wrap(errs.NetworkError, "ipfs cat", resp.Error)
	}

	content, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, "read ipfs document", err)
	}
	return content, nil
}

// Upload adds data to IPFS via the `add` command and returns the document
// URI (ipfs://<cid>).
func (f *nodeFetcher) Upload(ctx context.Context, data []byte) (string, error) {
	if f.api == nil {
		return "", errs.New(errs.InvalidConfig, "ipfs node not configured")
	}

	req := f.api.Request("add")
	req.Body(bytes.NewReader(data))

	resp, err := req.Send(ctx)
	if err != nil {
		return "", errs.Wrap(errs.NetworkError, "ipfs add", err)
	}
	defer func() {
		if closeErr := resp.Close(); closeErr != nil {
			zap.L().Error("error closing ipfs response", zap.Error(closeErr))
		}
	}()
	if resp.Error != nil {
		return "", errs.Wrap(errs.NetworkError, "ipfs add", resp.Error)
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		return "", errs.Wrap(errs.NetworkError, "read ipfs add response", err)
	}

	var addResp struct {
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(body, &addResp); err != nil {
		return "", errs.Wrap(errs.UnknownError, "decode ipfs add response", err)
	}
	if addResp.Hash == "" {
		return "", errs.New(errs.UnknownError, "ipfs add returned no hash")
	}

	zap.L().Debug("uploaded document to ipfs", zap.String("hash", addResp.Hash))
	return IpfsPrefix + addResp.Hash, nil
}
