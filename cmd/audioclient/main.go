package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"ai-speech-confidence-service/internal/observability/logging"
	"ai-speech-confidence-service/internal/service/analysis"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time streaming
// At 8kHz 16-bit mono = 16000 bytes/second
// 100ms chunks = 1600 bytes
const chunkSize = 1600
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-8khz.wav", "Path to WAV file (8kHz 16-bit mono)")
	serverURL := flag.String("server", "http://localhost:8080", "HTTP server base URL")
	language := flag.String("language", "en-US", "Capture language (en-US, ta-IN, hi-IN)")
	realtime := flag.Bool("realtime", true, "Pace the upload at real-time speed")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console"})

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open audio file")
	}
	defer f.Close()

	// Read and validate WAV header
	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatal().Err(err).Msg("Failed to read WAV header")
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal().Msg("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Info().
		Uint16("format", audioFormat).
		Uint16("channels", numChannels).
		Uint32("sampleRate", sampleRate).
		Uint16("bitsPerSample", bitsPerSample).
		Msg("WAV file")

	if audioFormat != 1 { // PCM
		log.Fatal().Msg("Only PCM format supported")
	}
	if sampleRate != 8000 {
		log.Warn().Uint32("sampleRate", sampleRate).Msg("Expected 8000 Hz audio")
	}

	// Stream the PCM body through a pipe so the server captures while we send.
	pr, pw := io.Pipe()
	go func() {
		chunk := make([]byte, chunkSize)
		var chunks, total int
		start := time.Now()
		for {
			n, err := f.Read(chunk)
			if n > 0 {
				if _, werr := pw.Write(chunk[:n]); werr != nil {
					pw.CloseWithError(werr)
					return
				}
				chunks++
				total += n
				if chunks%10 == 0 {
					log.Debug().Int("chunk", chunks).Int("bytes", total).Msg("Sent audio")
				}
				if *realtime {
					time.Sleep(chunkIntervalMs * time.Millisecond)
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		log.Info().Int("chunks", chunks).Int("bytes", total).Dur("elapsed", time.Since(start)).Msg("Finished streaming")
		pw.Close()
	}()

	target := *serverURL + "/v1/score/audio?language=" + url.QueryEscape(*language)
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Post(target, "application/octet-stream", pr)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		log.Fatal().Int("status", resp.StatusCode).Str("error", e.Error).Msg("Scoring failed")
	}

	var out analysis.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatal().Err(err).Msg("Failed to decode response")
	}

	log.Info().
		Str("transcript", out.Transcript).
		Int("wpm", out.WPM).
		Int("grammar", out.Result.GrammarAccuracy).
		Int("confidence", out.Result.ConfidenceLevel).
		Int("overall", out.Result.OverallPerformance).
		Str("feedback", string(out.Result.Feedback)).
		Msg("Scored")
	for _, c := range out.Corrections {
		log.Info().Str("category", c.Category).Str("detail", c.Detail).Str("suggestion", c.Suggestion).Msg("Correction")
	}
}
