package observability

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ai-speech-confidence-service/internal/observability/metrics"
)

// SplitMethod splits a full gRPC method name such as
// "/speech.confidence.v1.ScoringService/Score" into its service and method.
func SplitMethod(fullMethod string) (service, method string) {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "unknown", name
}

// callEvent picks the log level for a finished call. Client mistakes are
// warnings; server-side failures are errors.
func callEvent(code codes.Code) *zerolog.Event {
	switch code {
	case codes.OK:
		return log.Info()
	case codes.InvalidArgument, codes.NotFound, codes.Canceled, codes.FailedPrecondition:
		return log.Warn()
	default:
		return log.Error()
	}
}

func recordCall(m *metrics.Metrics, kind, fullMethod string, start time.Time, err error) {
	duration := time.Since(start)
	code := status.Code(err)
	m.RecordRequest("grpc", fullMethod, code.String(), duration.Seconds())

	service, method := SplitMethod(fullMethod)
	callEvent(code).
		Str("grpcService", service).
		Str("grpcMethod", method).
		Str("kind", kind).
		Str("code", code.String()).
		Dur("duration", duration).
		Msg("gRPC call finished")
}

// UnaryServerInterceptor records request metrics and logs every unary call.
func UnaryServerInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		recordCall(m, "unary", info.FullMethod, start, err)
		return resp, err
	}
}

// StreamServerInterceptor does the same for streams, such as health Watch.
func StreamServerInterceptor(m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		recordCall(m, "stream", info.FullMethod, start, err)
		return err
	}
}
