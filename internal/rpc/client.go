// Package rpc is a client for the finternet units backend. It speaks plain
// gRPC with hand-encoded protobuf messages.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader carries a fresh uuid on every call.
const RequestIDHeader = "x-request-id"

// DefaultTimeout bounds each call when no timeout option is given.
const DefaultTimeout = 10 * time.Second

const (
	methodLoadDriver   = "/finternet.Driver/LoadDriver"
	methodUnloadDriver = "/finternet.Driver/UnloadDriver"
	methodListResolver = "/finternet.Driver/ListResolver"
	methodBind         = "/finternet.Bind/Bind"
	methodUnbind       = "/finternet.Bind/Unbind"
	methodExecute      = "/finternet.Execution/Execute"
	methodSubmit       = "/finternet.Execution/Submit"
	methodList         = "/finternet.Execution/List"
	methodSendDetails  = "/finternet.DriverDetails/SendDetails"
)

var (
	ErrMissingField     = errors.New("rpc: missing required field")
	ErrNoBinary         = errors.New("rpc: binary is empty")
	ErrAmbiguousProgram = errors.New("rpc: execute needs exactly one of binary or program id")
)

// Client wraps a grpc connection to the backend.
type Client struct {
	conn     *grpc.ClientConn
	timeout  time.Duration
	log      logr.Logger
	dialOpts []grpc.DialOption
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l logr.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDialOptions appends grpc dial options, for example a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) { c.dialOpts = append(c.dialOpts, opts...) }
}

// Dial creates a client for target. The connection is established lazily on
// the first call. Targets written as http:// or https:// URLs are reduced to
// their host:port.
func Dial(target string, opts ...Option) (*Client, error) {
	c := &Client{timeout: DefaultTimeout, log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, c.dialOpts...)
	conn, err := grpc.NewClient(NormalizeTarget(target), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", target, err)
	}
	c.conn = conn
	return c, nil
}

// NormalizeTarget strips an http(s) scheme and trailing slashes.
func NormalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(target, scheme) {
			target = strings.TrimPrefix(target, scheme)
			break
		}
	}
	return strings.TrimRight(target, "/")
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp Message, md map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id := uuid.NewString()
	pairs := []string{RequestIDHeader, id}
	for k, v := range md {
		pairs = append(pairs, strings.ToLower(k), url.PathEscape(v))
	}
	ctx = metadata.AppendToOutgoingContext(ctx, pairs...)

	start := time.Now()
	err := c.conn.Invoke(ctx, method, req, resp)
	log := c.log.WithValues("method", method, "request_id", id, "elapsed", time.Since(start).String())
	if err != nil {
		log.Error(err, "rpc failed", "code", status.Code(err).String())
		return fmt.Errorf("%s: %w", method, err)
	}
	log.V(1).Info("rpc completed")
	return nil
}

func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, fields[i])
		}
	}
	return nil
}

// LoadDriver uploads a driver binary under name@version.
func (c *Client) LoadDriver(ctx context.Context, name, version string, binary []byte) (*LoadDriverResponse, error) {
	if err := required("name", name, "version", version); err != nil {
		return nil, err
	}
	if len(binary) == 0 {
		return nil, ErrNoBinary
	}
	resp := new(LoadDriverResponse)
	req := &LoadDriverRequest{DriverName: name, DriverVersion: version, DriverBinary: binary}
	if err := c.invoke(ctx, methodLoadDriver, req, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// UnloadDriver removes a loaded driver.
func (c *Client) UnloadDriver(ctx context.Context, name, version string) (*UnloadDriverResponse, error) {
	if err := required("name", name, "version", version); err != nil {
		return nil, err
	}
	resp := new(UnloadDriverResponse)
	req := &UnloadDriverRequest{DriverName: name, DriverVersion: version}
	if err := c.invoke(ctx, methodUnloadDriver, req, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListResolver returns every path mapping known to the resolver.
func (c *Client) ListResolver(ctx context.Context) (*ListResolverResponse, error) {
	resp := new(ListResolverResponse)
	if err := c.invoke(ctx, methodListResolver, &ListResolverRequest{}, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// Bind maps req.Path to a driver with the given account info.
func (c *Client) Bind(ctx context.Context, req BindRequest) (*BindResponse, error) {
	if err := required("driver name", req.DriverName, "driver version", req.DriverVersion, "path", req.Path); err != nil {
		return nil, err
	}
	resp := new(BindResponse)
	if err := c.invoke(ctx, methodBind, &req, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// Unbind removes the mapping for path.
func (c *Client) Unbind(ctx context.Context, path string) (*UnbindResponse, error) {
	if err := required("path", path); err != nil {
		return nil, err
	}
	resp := new(UnbindResponse)
	if err := c.invoke(ctx, methodUnbind, &UnbindRequest{Path: path}, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// Execute runs an inline binary or a submitted program. Exactly one of
// req.Binary and req.ProgramID must be set. md is sent as call metadata with
// each value percent-encoded.
func (c *Client) Execute(ctx context.Context, req ExecutionRequest, md map[string]string) (*ExecutionResponse, error) {
	hasBinary := len(req.Binary) > 0
	hasProgram := strings.TrimSpace(req.ProgramID) != ""
	switch {
	case hasBinary && hasProgram:
		return nil, ErrAmbiguousProgram
	case !hasBinary && !hasProgram:
		return nil, ErrAmbiguousProgram
	}
	if !hasBinary {
		req.Binary = nil
	}
	resp := new(ExecutionResponse)
	if err := c.invoke(ctx, methodExecute, &req, resp, md); err != nil {
		return nil, err
	}
	return resp, nil
}

// Submit stores a program on the backend and returns its id.
func (c *Client) Submit(ctx context.Context, name, version string, binary []byte) (*SubmitProgramResponse, error) {
	if err := required("name", name, "version", version); err != nil {
		return nil, err
	}
	if len(binary) == 0 {
		return nil, ErrNoBinary
	}
	resp := new(SubmitProgramResponse)
	req := &SubmitProgramRequest{Name: name, Version: version, Binary: binary}
	if err := c.invoke(ctx, methodSubmit, req, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPrograms returns the submitted programs.
func (c *Client) ListPrograms(ctx context.Context) (*ListProgramResponse, error) {
	resp := new(ListProgramResponse)
	if err := c.invoke(ctx, methodList, &ListProgramRequest{}, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}

// DriverDetails lists the loaded drivers.
func (c *Client) DriverDetails(ctx context.Context) (*DriverDetailsResponse, error) {
	resp := new(DriverDetailsResponse)
	if err := c.invoke(ctx, methodSendDetails, &DriverDetailsRequest{}, resp, nil); err != nil {
		return nil, err
	}
	return resp, nil
}
