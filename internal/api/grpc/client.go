package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ScoreRequest is the client-side form of a Score call.
type ScoreRequest struct {
	Transcript      string
	DurationSeconds float64
	Language        string
}

// Score calls ScoringService.Score over conn.
func Score(ctx context.Context, conn grpc.ClientConnInterface, req ScoreRequest, opts ...grpc.CallOption) (*structpb.Struct, error) {
	fields := map[string]any{
		"transcript":      req.Transcript,
		"durationSeconds": req.DurationSeconds,
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, ScoreMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
