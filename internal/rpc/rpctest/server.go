// Package rpctest runs an in-memory finternet backend over bufconn for tests.
package rpctest

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"pkt.systems/unitsctl/internal/rpc"
)

const bufSize = 1 << 20

// Backend is the fake server state. Fields may be seeded before the first
// call; afterwards use the accessor methods.
type Backend struct {
	mu       sync.Mutex
	Drivers  []rpc.DriverDetail
	Mappings []rpc.PathMapping
	Programs []rpc.Program
	// ExecuteFunc overrides the default echo behaviour of Execute.
	ExecuteFunc func(req *rpc.ExecutionRequest, md metadata.MD) (string, error)

	lastMD metadata.MD
	nextID int
}

// Start serves b on an in-memory listener and returns a connected client.
// Everything is torn down through t.Cleanup.
func Start(t testing.TB, b *Backend, opts ...rpc.Option) *rpc.Client {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer(grpc.ForceServerCodec(rpc.Codec{}))
	for _, desc := range b.serviceDescs() {
		srv.RegisterService(desc, b)
	}
	go func() { _ = srv.Serve(lis) }()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	opts = append(opts, rpc.WithDialOptions(
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	))
	client, err := rpc.Dial("passthrough:///bufnet", opts...)
	if err != nil {
		srv.Stop()
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
		srv.Stop()
	})
	return client
}

// LastMetadata returns the incoming metadata of the most recent call.
func (b *Backend) LastMetadata() metadata.MD {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastMD.Copy()
}

// Snapshot returns copies of the current drivers and mappings.
func (b *Backend) Snapshot() ([]rpc.DriverDetail, []rpc.PathMapping) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]rpc.DriverDetail(nil), b.Drivers...), append([]rpc.PathMapping(nil), b.Mappings...)
}

func (b *Backend) record(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	b.lastMD = md
}

func (b *Backend) driverIndex(name, version string) int {
	for i, d := range b.Drivers {
		if d.Name == name && d.Version == version {
			return i
		}
	}
	return -1
}

func (b *Backend) loadDriver(ctx context.Context, req *rpc.LoadDriverRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	if b.driverIndex(req.DriverName, req.DriverVersion) >= 0 {
		return nil, status.Errorf(codes.AlreadyExists, "driver %s@%s already loaded", req.DriverName, req.DriverVersion)
	}
	b.Drivers = append(b.Drivers, rpc.DriverDetail{Name: req.DriverName, Version: req.DriverVersion})
	return &rpc.LoadDriverResponse{DriverName: req.DriverName, DriverVersion: req.DriverVersion}, nil
}

func (b *Backend) unloadDriver(ctx context.Context, req *rpc.UnloadDriverRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	i := b.driverIndex(req.DriverName, req.DriverVersion)
	if i < 0 {
		return nil, status.Errorf(codes.NotFound, "driver %s@%s not loaded", req.DriverName, req.DriverVersion)
	}
	b.Drivers = append(b.Drivers[:i], b.Drivers[i+1:]...)
	return &rpc.UnloadDriverResponse{DriverName: req.DriverName, DriverVersion: req.DriverVersion}, nil
}

func (b *Backend) listResolver(ctx context.Context, _ *rpc.ListResolverRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	return &rpc.ListResolverResponse{PathMappings: append([]rpc.PathMapping(nil), b.Mappings...)}, nil
}

func (b *Backend) bind(ctx context.Context, req *rpc.BindRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	if b.driverIndex(req.DriverName, req.DriverVersion) < 0 {
		return nil, status.Errorf(codes.FailedPrecondition, "driver %s@%s not loaded", req.DriverName, req.DriverVersion)
	}
	for _, m := range b.Mappings {
		if m.Path == req.Path {
			return nil, status.Errorf(codes.AlreadyExists, "path %s already bound", req.Path)
		}
	}
	b.Mappings = append(b.Mappings, rpc.PathMapping{
		Path:          req.Path,
		DriverName:    req.DriverName,
		DriverVersion: req.DriverVersion,
		AccountInfo:   req.AccountInfo,
	})
	return &rpc.BindResponse{
		DriverName:    req.DriverName,
		DriverVersion: req.DriverVersion,
		Path:          req.Path,
		AccountInfo:   req.AccountInfo,
	}, nil
}

func (b *Backend) unbind(ctx context.Context, req *rpc.UnbindRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	for i, m := range b.Mappings {
		if m.Path == req.Path {
			b.Mappings = append(b.Mappings[:i], b.Mappings[i+1:]...)
			return &rpc.UnbindResponse{DriverName: m.DriverName, DriverVersion: m.DriverVersion, AccountInfo: m.AccountInfo}, nil
		}
	}
	return nil, status.Errorf(codes.NotFound, "path %s not bound", req.Path)
}

func (b *Backend) execute(ctx context.Context, req *rpc.ExecutionRequest) (rpc.Message, error) {
	b.mu.Lock()
	b.record(ctx)
	fn, md := b.ExecuteFunc, b.lastMD
	known := req.ProgramID == ""
	for _, p := range b.Programs {
		if p.ProgramID == req.ProgramID {
			known = true
		}
	}
	b.mu.Unlock()
	if !known {
		return nil, status.Errorf(codes.NotFound, "program %s not found", req.ProgramID)
	}
	if fn != nil {
		out, err := fn(req, md)
		if err != nil {
			return nil, err
		}
		return &rpc.ExecutionResponse{Output: out}, nil
	}
	return &rpc.ExecutionResponse{Output: req.Input}, nil
}

func (b *Backend) submit(ctx context.Context, req *rpc.SubmitProgramRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	b.nextID++
	id := "prog-" + strconv.Itoa(b.nextID)
	b.Programs = append(b.Programs, rpc.Program{ProgramID: id, Name: req.Name, Version: req.Version})
	return &rpc.SubmitProgramResponse{ProgramID: id}, nil
}

func (b *Backend) listPrograms(ctx context.Context, _ *rpc.ListProgramRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	return &rpc.ListProgramResponse{Programs: append([]rpc.Program(nil), b.Programs...)}, nil
}

func (b *Backend) sendDetails(ctx context.Context, _ *rpc.DriverDetailsRequest) (rpc.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(ctx)
	return &rpc.DriverDetailsResponse{
		Message: fmt.Sprintf("%d drivers loaded", len(b.Drivers)),
		Drivers: append([]rpc.DriverDetail(nil), b.Drivers...),
	}, nil
}

func unary[Req any, PReq interface {
	*Req
	rpc.Message
}](name string, fn func(*Backend, context.Context, PReq) (rpc.Message, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			req := PReq(new(Req))
			if err := dec(req); err != nil {
				return nil, err
			}
			return fn(srv.(*Backend), ctx, req)
		},
	}
}

func (b *Backend) serviceDescs() []*grpc.ServiceDesc {
	return []*grpc.ServiceDesc{
		{
			ServiceName: "finternet.Driver",
			HandlerType: (*any)(nil),
			Methods: []grpc.MethodDesc{
				unary("LoadDriver", (*Backend).loadDriver),
				unary("UnloadDriver", (*Backend).unloadDriver),
				unary("ListResolver", (*Backend).listResolver),
			},
		},
		{
			ServiceName: "finternet.Bind",
			HandlerType: (*any)(nil),
			Methods: []grpc.MethodDesc{
				unary("Bind", (*Backend).bind),
				unary("Unbind", (*Backend).unbind),
			},
		},
		{
			ServiceName: "finternet.Execution",
			HandlerType: (*any)(nil),
			Methods: []grpc.MethodDesc{
				unary("Execute", (*Backend).execute),
				unary("Submit", (*Backend).submit),
				unary("List", (*Backend).listPrograms),
			},
		},
		{
			ServiceName: "finternet.DriverDetails",
			HandlerType: (*any)(nil),
			Methods: []grpc.MethodDesc{
				unary("SendDetails", (*Backend).sendDetails),
			},
		},
	}
}
