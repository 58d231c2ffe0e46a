// Package grpcapi exposes the scoring engine over gRPC. Requests and
// responses are google.protobuf.Struct values shaped like the HTTP JSON API.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"ai-speech-confidence-service/internal/models"
	"ai-speech-confidence-service/internal/observability"
	"ai-speech-confidence-service/internal/observability/metrics"
	"ai-speech-confidence-service/internal/scoring"
	"ai-speech-confidence-service/internal/service/analysis"
	"ai-speech-confidence-service/internal/service/capture"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "speech.confidence.v1.ScoringService"

	// ScoreMethod is the full method name of Score.
	ScoreMethod = "/" + ServiceName + "/Score"
)

// ScoringServer is the server API for ScoringService.
type ScoringServer interface {
	Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes ScoringService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: scoreHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "speech/confidence/v1/scoring.proto",
}

func scoreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScoreMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScoringServer).Score(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements ScoringServer on top of an Analyzer.
type Server struct {
	analyzer *analysis.Analyzer
}

// Register registers ScoringService on g.
func Register(g *grpc.Server, analyzer *analysis.Analyzer) {
	g.RegisterService(&ServiceDesc, &Server{analyzer: analyzer})
}

// NewServer builds a gRPC server with metrics interceptors, ScoringService,
// health checks and reflection.
func NewServer(analyzer *analysis.Analyzer, m *metrics.Metrics) (*grpc.Server, *health.Server) {
	g := grpc.NewServer(
		grpc.UnaryInterceptor(observability.UnaryServerInterceptor(m)),
		grpc.StreamInterceptor(observability.StreamServerInterceptor(m)),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(g, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	Register(g, analyzer)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(g)
	return g, healthServer
}

// Score grades the "transcript" field of req. "durationSeconds" and
// "language" are optional.
func (s *Server) Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	transcript := fields["transcript"].GetStringValue()
	duration := fields["durationSeconds"].GetNumberValue()
	if duration < 0 {
		return nil, status.Error(codes.InvalidArgument, "durationSeconds must not be negative")
	}
	lang, err := capture.ResolveLanguage(fields["language"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	out, err := s.analyzer.Analyze(ctx, analysis.Request{
		Transcript:      transcript,
		DurationSeconds: duration,
		Language:        lang,
		Source:          models.SourceGRPC,
	})
	if err != nil {
		if errors.Is(err, scoring.ErrEmptyInput) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		log.Error().Err(err).Msg("gRPC score failed")
		return nil, status.Error(codes.Internal, "scoring failed")
	}

	resp, err := toStruct(out.Response())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

// toStruct converts v to a Struct through its JSON form, so gRPC clients see
// the same field names as HTTP clients.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
