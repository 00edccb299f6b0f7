package license

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/model"
	"github.com/licensekit/license-sdk-go/pkg/retry"
	"github.com/licensekit/license-sdk-go/pkg/storage"
)

// VerifyLicense reports whether the token currently grants a usable license:
// it must exist, be unrevoked on-chain, and be unexpired per its metadata.
// A definitive "not valid" answer is (false, nil); errors mean the question
// could not be answered.
func (c *Client) VerifyLicense(ctx context.Context, tokenID string) (bool, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return false, err
	}

	out, err := c.staticCall(ctx, methodIsValid, id)
	if err != nil {
		return false, mapLicenseError(err, tokenID)
	}
	valid, err := boolResult(out, methodIsValid)
	if err != nil {
		return false, err
	}
	if !valid {
		return false, nil
	}

	md, err := c.GetLicenseMetadata(ctx, tokenID)
	if err != nil {
		return false, err
	}
	if md.Expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

// GetLicenseMetadata reads and decodes the token's metadata document,
// resolving ipfs:// URIs through the configured storage backend.
func (c *Client) GetLicenseMetadata(ctx context.Context, tokenID string) (*model.LicenseMetadata, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	out, err := c.staticCall(ctx, methodMetadata, id)
	if err != nil {
		return nil, mapLicenseError(err, tokenID)
	}
	blob, err := stringResult(out, methodMetadata)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(blob, storage.IpfsPrefix) {
		if c.store == nil {
			return nil, errs.Newf(errs.InvalidConfig, "license %s metadata is off-chain but no storage is configured", tokenID)
		}
		doc, err := c.store.ReadDocument(ctx, blob)
		if err != nil {
			return nil, err
		}
		blob = string(doc)
	}

	md, err := model.ParseLicenseMetadata(blob)
	if err != nil {
		return nil, err
	}
	return md, nil
}

// GetLicenseInfo aggregates owner, metadata and validity for one token. The
// three reads run concurrently; if any fails the whole call fails with that
// read's error and the other results are discarded.
func (c *Client) GetLicenseInfo(ctx context.Context, tokenID string) (*model.LicenseInfo, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	var (
		wg    sync.WaitGroup
		owner common.Address
		md    *model.LicenseMetadata
		valid bool
	)
	errCh := make(chan error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		out, err := c.staticCall(ctx, methodOwnerOf, id)
		if err != nil {
			errCh <- mapLicenseError(err, tokenID)
			return
		}
		a, err := addressResult(out, methodOwnerOf)
		if err != nil {
			errCh <- err
			return
		}
		owner = a
	}()
	go func() {
		defer wg.Done()
		m, err := c.GetLicenseMetadata(ctx, tokenID)
		if err != nil {
			errCh <- err
			return
		}
		md = m
	}()
	go func() {
		defer wg.Done()
		out, err := c.staticCall(ctx, methodIsValid, id)
		if err != nil {
			errCh <- mapLicenseError(err, tokenID)
			return
		}
		v, err := boolResult(out, methodIsValid)
		if err != nil {
			errCh <- err
			return
		}
		valid = v
	}()
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if owner == (common.Address{}) {
		return nil, errs.Newf(errs.LicenseNotFound, "license %s does not exist", tokenID)
	}
	return &model.LicenseInfo{
		TokenID:  tokenID,
		Owner:    owner,
		Metadata: md,
		Valid:    valid,
	}, nil
}

// GetContractInfo reads the contract's descriptive state.
func (c *Client) GetContractInfo(ctx context.Context) (*model.ContractInfo, error) {
	info := &model.ContractInfo{Address: c.address}

	out, err := c.staticCall(ctx, methodName)
	if err != nil {
		return nil, mapLicenseError(err, "")
	}
	if info.Name, err = stringResult(out, methodName); err != nil {
		return nil, err
	}

	out, err = c.staticCall(ctx, methodSymbol)
	if err != nil {
		return nil, mapLicenseError(err, "")
	}
	if info.Symbol, err = stringResult(out, methodSymbol); err != nil {
		return nil, err
	}

	out, err = c.staticCall(ctx, methodSupply)
	if err != nil {
		return nil, mapLicenseError(err, "")
	}
	supply, err := bigResult(out, methodSupply)
	if err != nil {
		return nil, err
	}
	info.TotalSupply = supply.String()

	paused, err := c.IsPaused(ctx)
	if err != nil {
		return nil, err
	}
	info.Paused = paused
	return info, nil
}

// IsPaused reports whether the contract is currently paused.
func (c *Client) IsPaused(ctx context.Context) (bool, error) {
	out, err := c.staticCall(ctx, methodPaused)
	if err != nil {
		return false, mapLicenseError(err, "")
	}
	return boolResult(out, methodPaused)
}

// IsRevoked reports whether the token has been revoked.
func (c *Client) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return false, err
	}
	out, err := c.staticCall(ctx, methodIsRevoked, id)
	if err != nil {
		return false, mapLicenseError(err, tokenID)
	}
	return boolResult(out, methodIsRevoked)
}

// HasRole reports whether account holds the given AccessControl role.
func (c *Client) HasRole(ctx context.Context, role model.Role, account common.Address) (bool, error) {
	out, err := c.staticCall(ctx, methodHasRole, [32]byte(role), account)
	if err != nil {
		return false, mapLicenseError(err, "")
	}
	return boolResult(out, methodHasRole)
}

// staticCall performs one read-only contract query under the read deadline,
// normalizing any failure.
func (c *Client) staticCall(ctx context.Context, method string, args ...any) ([]any, error) {
	return retry.WithTimeout(ctx, c.readTimeout, func(ctx context.Context) ([]any, error) {
		var out []any
		if err := c.backend.StaticCall(ctx, c.address, method, &out, args...); err != nil {
			return nil, errs.Normalize(err)
		}
		return out, nil
	})
}

func boolResult(out []any, method string) (bool, error) {
	if len(out) != 1 {
		return false, errs.Newf(errs.UnknownError, "%s returned %d values, want 1", method, len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, errs.Newf(errs.UnknownError, "%s returned %T, want bool", method, out[0])
	}
	return v, nil
}

func stringResult(out []any, method string) (string, error) {
	if len(out) != 1 {
		return "", errs.Newf(errs.UnknownError, "%s returned %d values, want 1", method, len(out))
	}
	v, ok := out[0].(string)
	if !ok {
		return "", errs.Newf(errs.UnknownError, "%s returned %T, want string", method, out[0])
	}
	return v, nil
}

func addressResult(out []any, method string) (common.Address, error) {
	if len(out) != 1 {
		return common.Address{}, errs.Newf(errs.UnknownError, "%s returned %d values, want 1", method, len(out))
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errs.Newf(errs.UnknownError, "%s returned %T, want address", method, out[0])
	}
	return v, nil
}

func bigResult(out []any, method string) (*big.Int, error) {
	if len(out) != 1 {
		return nil, errs.Newf(errs.UnknownError, "%s returned %d values, want 1", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, errs.Newf(errs.UnknownError, "%s returned %T, want *big.Int", method, out[0])
	}
	return v, nil
}

// mapLicenseError refines normalized chain errors with license-domain
// meaning derived from well-known revert reasons.
func mapLicenseError(err error, tokenID string) error {
	if err == nil {
		return nil
	}
	e := errs.Normalize(err)

	msg := strings.ToLower(e.Message)
	if e.Cause != nil {
		msg += " " + strings.ToLower(e.Cause.Error())
	}

	switch {
	case strings.Contains(msg, "nonexistent token"),
		strings.Contains(msg, "invalid token id"),
		strings.Contains(msg, "token does not exist"):
		if tokenID != "" {
			return errs.Wrap(errs.LicenseNotFound, "license "+tokenID+" does not exist", e)
		}
		return errs.Wrap(errs.LicenseNotFound, "license does not exist", e)
	case strings.Contains(msg, "license revoked"),
		strings.Contains(msg, "token revoked"):
		return errs.Wrap(errs.LicenseRevoked, "license "+tokenID+" is revoked", e)
	case strings.Contains(msg, "license expired"):
		return errs.Wrap(errs.LicenseExpired, "license "+tokenID+" is expired", e)
	case strings.Contains(msg, "accesscontrol"),
		strings.Contains(msg, "missing role"),
		strings.Contains(msg, "caller is not"):
		return errs.Wrap(errs.InsufficientPermissions, "caller lacks the required role", e)
	}
	return e
}
