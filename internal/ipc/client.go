package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Fileforge.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Fileforge.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Jobs returns jobs optionally filtered by statuses.
func (c *Client) Jobs(statuses []string) (*JobsResponse, error) {
	var resp JobsResponse
	if err := c.client.Call("Fileforge.Jobs", JobsRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Describe returns details for a single job.
func (c *Client) Describe(jobKey string) (*DescribeResponse, error) {
	var resp DescribeResponse
	if err := c.client.Call("Fileforge.Describe", DescribeRequest{JobKey: jobKey}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns queue statistics.
func (c *Client) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.client.Call("Fileforge.Stats", StatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Audit returns ledger entries.
func (c *Client) Audit(req AuditRequest) (*AuditResponse, error) {
	var resp AuditResponse
	if err := c.client.Call("Fileforge.Audit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Watch long-polls the notification bus.
func (c *Client) Watch(req WatchRequest) (*WatchResponse, error) {
	var resp WatchResponse
	if err := c.client.Call("Fileforge.Watch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
