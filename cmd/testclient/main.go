package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	grpcapi "ai-speech-confidence-service/internal/api/grpc"
	"ai-speech-confidence-service/internal/observability/logging"
)

var samples = []string{
	"I think my biggest strength is staying calm when a project changes direction.",
	"Um so basically I like working with people you know and I mean solving problems.",
	"Yesterday I go to the office and I is very tired because we discuss about the budget.",
}

func main() {
	serverAddr := flag.String("server", "localhost:50051", "gRPC server address")
	language := flag.String("language", "en-US", "Transcript language")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console"})

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer conn.Close()

	log.Info().Str("server", *serverAddr).Msg("Connected to server")

	texts := samples
	if flag.NArg() > 0 {
		texts = flag.Args()
	}

	for _, text := range texts {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		out, err := grpcapi.Score(ctx, conn, grpcapi.ScoreRequest{
			Transcript:      text,
			DurationSeconds: 10,
			Language:        *language,
		})
		cancel()
		if err != nil {
			log.Error().Err(err).Str("transcript", text).Msg("Score failed")
			continue
		}

		result := out.GetFields()["result"].GetStructValue()
		raw, _ := protojson.Marshal(result)
		log.Info().
			Str("transcript", text).
			Float64("overall", result.GetFields()["overallPerformance"].GetNumberValue()).
			RawJSON("result", raw).
			Msg("Scored")
	}
}
