package dashboard

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/nestjson"
)

var errUnsupportedBinary = errors.New("unsupported binary type, expected wasm or wat")

// writeResult sends {"result": <v with nested JSON decoded>, "pretty": <text>}.
func (s *Server) writeResult(w http.ResponseWriter, code int, v any) {
	value, err := nestjson.FromAny(v)
	if err != nil {
		s.log.Error(err, "encode result")
		s.writeError(w, err)
		return
	}
	body := nestjson.Object(
		nestjson.Member{Key: "result", Value: nestjson.Unwrap(value)},
		nestjson.Member{Key: "pretty", Value: nestjson.String(nestjson.Prettify(value))},
	)
	out, err := body.MarshalJSON()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(out, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		s.log.Error(err, "request failed", "status", code)
	}
	body := nestjson.Object(nestjson.Member{Key: "error", Value: nestjson.String(err.Error())})
	out, _ := body.MarshalJSON()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(out, '\n'))
}

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func httpStatus(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, rpc.ErrMissingField),
		errors.Is(err, rpc.ErrNoBinary),
		errors.Is(err, rpc.ErrAmbiguousProgram),
		errors.Is(err, errUnsupportedBinary):
		return http.StatusBadRequest
	}
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
