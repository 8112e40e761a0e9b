package rpcapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/rpc/v2/json2"
)

// Client calls a Service over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for the endpoint at url.
func NewClient(url string) *Client {
	return &Client{url: url, http: http.DefaultClient}
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(ServiceName+"."+method, args)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) Submit(ctx context.Context, args SubmitArgs) (SubmitReply, error) {
	var reply SubmitReply
	return reply, c.call(ctx, "Submit", &args, &reply)
}

func (c *Client) GetBlocks(ctx context.Context, args GetBlocksArgs) ([]RPCBlock, error) {
	var reply GetBlocksReply
	return reply.Blocks, c.call(ctx, "GetBlocks", &args, &reply)
}

func (c *Client) GetBalance(ctx context.Context, addr common.Address) (GetBalanceReply, error) {
	var reply GetBalanceReply
	return reply, c.call(ctx, "GetBalance", &GetBalanceArgs{Address: addr}, &reply)
}

func (c *Client) GetReceipt(ctx context.Context, hash common.Hash) (RPCReceipt, error) {
	var reply RPCReceipt
	return reply, c.call(ctx, "GetReceipt", &GetReceiptArgs{Hash: hash}, &reply)
}

func (c *Client) GetPoH(ctx context.Context) (GetPoHReply, error) {
	var reply GetPoHReply
	return reply, c.call(ctx, "GetPoH", &GetPoHArgs{}, &reply)
}
