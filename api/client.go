// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"code.vegaprotocol.io/obavs/libs/jsonrpc"
	"code.vegaprotocol.io/obavs/logging"
	"code.vegaprotocol.io/obavs/notary"
	"code.vegaprotocol.io/obavs/types"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

var ErrUnexpectedResponse = errors.New("unexpected response from the aggregator")

// Client sends signed task responses to the aggregator.
type Client struct {
	log  *logging.Logger
	cfg  ClientConfig
	http *http.Client
}

func NewClient(log *logging.Logger, cfg ClientConfig) *Client {
	log = log.Named("client")
	log.SetLevel(cfg.Level.Get())
	return &Client{
		log: log,
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout.Get(),
		},
	}
}

// ReloadConf updates the internal configuration.
func (c *Client) ReloadConf(cfg ClientConfig) {
	c.log.Info("reloading configuration")
	if c.log.GetLevel() != cfg.Level.Get() {
		c.log.Info("updating log level",
			logging.String("old", c.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		c.log.SetLevel(cfg.Level.Get())
	}
}

// SendSignedTaskResponse delivers the response to the aggregator. Transport
// failures are retried. So is an unknown task, the aggregator may not have
// seen the task yet. Any other rejection is returned straight away.
func (c *Client) SendSignedTaskResponse(ctx context.Context, sp *types.SignedTaskResponse) (notary.Receipt, error) {
	req, err := jsonrpc.NewRequest(MethodProcessSignedTaskResponse, uuid.NewV4().String(), sp)
	if err != nil {
		return notary.Receipt{}, errors.Wrap(err, "could not build request")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return notary.Receipt{}, errors.Wrap(err, "could not marshal request")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInterval.Get()

	var (
		receipt notary.Receipt
		attempt int
	)
	err = backoff.Retry(
		func() error {
			attempt++
			r, err := c.call(ctx, body)
			if err == nil {
				receipt = r
				return nil
			}
			if errors.Is(err, types.ErrUnknownTask) || !isRejection(err) {
				c.log.Debug("could not send signed task response, retrying",
					logging.TaskIndex(sp.TaskResponse.ReferenceTaskIndex),
					logging.Int("attempt", attempt),
					logging.Error(err),
				)
				return err
			}
			return backoff.Permanent(err)
		},
		backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.Retries), ctx),
	)
	if err != nil {
		return notary.Receipt{}, err
	}
	return receipt, nil
}

func (c *Client) call(ctx context.Context, body []byte) (notary.Receipt, error) {
	receipt := notary.Receipt{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return receipt, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return receipt, err
	}
	defer func() { _ = resp.Body.Close() }()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return receipt, err
	}

	response := jsonrpc.Response{}
	if err := json.Unmarshal(buf, &response); err != nil {
		return receipt, errors.Wrapf(ErrUnexpectedResponse, "status %d", resp.StatusCode)
	}
	if response.Error != nil {
		return receipt, &rejection{err: fromErrorDetails(response.Error)}
	}
	if err := json.Unmarshal(response.Result, &receipt); err != nil {
		return receipt, errors.Wrap(ErrUnexpectedResponse, err.Error())
	}
	return receipt, nil
}

// rejection marks an error returned by the aggregator, as opposed to a
// transport failure.
type rejection struct {
	err error
}

func (r *rejection) Error() string { return r.err.Error() }
func (r *rejection) Unwrap() error { return r.err }

func isRejection(err error) bool {
	var r *rejection
	return errors.As(err, &r)
}
