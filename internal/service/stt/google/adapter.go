// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"errors"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ai-speech-confidence-service/internal/service/stt"
)

// ErrNotStarted is returned by SendAudio before Start.
var ErrNotStarted = errors.New("google stt: session not started")

// Config is an alias kept so callers can configure the adapter without
// importing the stt package.
type Config = stt.Config

// DefaultConfig returns the default Google recognition settings.
func DefaultConfig() Config {
	return stt.DefaultConfig()
}

type streamOpener func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error)

// Adapter implements stt.Adapter using Google Cloud Speech-to-Text.
type Adapter struct {
	cfg    Config
	client *speech.Client
	open   streamOpener

	mu     sync.Mutex
	stream speechpb.Speech_StreamingRecognizeClient
	cb     stt.Callback
	done   chan struct{}
	closed bool
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	a := newAdapter(cfg, func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error) {
		return c.StreamingRecognize(ctx)
	})
	a.client = c
	return a, nil
}

func newAdapter(cfg Config, open streamOpener) *Adapter {
	return &Adapter{cfg: cfg, open: open}
}

// Start opens a streaming recognition session, sends the initial config and
// begins receiving results in the background.
func (a *Adapter) Start(ctx context.Context, cb stt.Callback) error {
	stream, err := a.open(ctx)
	if err != nil {
		return err
	}

	// Send streaming config as the first message
	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   parseAudioEncoding(a.cfg.AudioEncoding),
					SampleRateHertz:            a.cfg.SampleRateHz,
					LanguageCode:               a.cfg.LanguageCode,
					EnableAutomaticPunctuation: true,
				},
				InterimResults: a.cfg.InterimResults,
			},
		},
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.stream = stream
	a.cb = cb
	a.done = make(chan struct{})
	a.mu.Unlock()

	go a.listen(stream, cb, a.done)
	return nil
}

// SendAudio sends audio bytes to Google Speech-to-Text.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	stream, closed := a.stream, a.closed
	a.mu.Unlock()

	if closed {
		return nil
	}
	if stream == nil {
		return ErrNotStarted
	}
	return stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// Close half-closes the stream and waits until Google has returned its
// remaining results.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	stream, done := a.stream, a.done
	a.mu.Unlock()

	var err error
	if stream != nil {
		err = stream.CloseSend()
		<-done
	}
	if a.client != nil {
		if cerr := a.client.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// listen receives transcript responses and invokes callbacks until the
// stream ends.
func (a *Adapter) listen(stream speechpb.Speech_StreamingRecognizeClient, cb stt.Callback, done chan struct{}) {
	defer close(done)
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			if status.Code(err) == codes.Canceled {
				log.Debug().Msg("Google STT stream cancelled")
				return
			}
			cb.OnError(err)
			return
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			alt := r.Alternatives[0]
			if r.IsFinal {
				cb.OnFinal(alt.Transcript, float64(alt.Confidence))
			} else {
				cb.OnPartial(alt.Transcript)
			}
		}
		if resp.SpeechEventType == speechpb.StreamingRecognizeResponse_END_OF_SINGLE_UTTERANCE {
			cb.OnEndOfUtterance()
		}
	}
}

// parseAudioEncoding maps an encoding name to the Google enum. Names are
// matched exactly; anything unknown falls back to LINEAR16.
func parseAudioEncoding(name string) speechpb.RecognitionConfig_AudioEncoding {
	switch name {
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
