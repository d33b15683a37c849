package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tazhate/noxd/internal/domain"
)

func TestChainWithoutKeySkipsCloud(t *testing.T) {
	g := NewGateway(NewCloudClient(""), NewLocalVoices(NewEngine()), NewEngine())
	chain := g.chain("")
	if len(chain) != 2 {
		t.Fatalf("expected 2 strategies without a key, got %d", len(chain))
	}
	if chain[0].Name() != "local" || chain[1].Name() != "device" {
		t.Fatalf("unexpected order: %s, %s", chain[0].Name(), chain[1].Name())
	}
}

func TestChainWithKeyTriesCloudFirst(t *testing.T) {
	g := NewGateway(NewCloudClient(""), NewLocalVoices(NewEngine()), NewEngine())
	chain := g.chain("key")
	if len(chain) != 3 {
		t.Fatalf("expected 3 strategies with a key, got %d", len(chain))
	}
	if chain[0].Name() != "cloud" {
		t.Fatalf("cloud must lead the chain, got %s", chain[0].Name())
	}
}

func TestSpeakFallsThroughFailedCloud(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cloud := NewCloudClient(srv.URL)
	cloud.play = func(ctx context.Context, mp3 []byte) error {
		t.Error("playback must not run when synthesis failed")
		return nil
	}

	local := NewLocalVoices(NewEngine())
	spoken := false
	local.inventory = func() []Voice {
		spoken = true
		return nil // local also fails, engine is next
	}

	g := NewGateway(cloud, local, nil)
	g.Speak(context.Background(), "wake up", domain.DefaultTTSOptions(), "key")

	if !spoken {
		t.Fatal("local backend was never tried after cloud failure")
	}
}

func TestSpeakEmptyMessageIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty message")
	}))
	defer srv.Close()

	g := NewGateway(NewCloudClient(srv.URL), nil, nil)
	g.Speak(context.Background(), "", domain.DefaultTTSOptions(), "key")
}

// echoServer synthesizes the request text verbatim, so playback can tell
// utterances apart by their bytes.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte(req.Input.Text)),
		})
	}))
}

func TestAbandonedUtteranceDoesNotCancelReplacement(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	cloud := NewCloudClient(srv.URL)

	firstPlaying := make(chan struct{})
	releaseFirst := make(chan struct{})
	secondPlaying := make(chan struct{})
	releaseSecond := make(chan struct{})
	secondErr := make(chan error, 1)

	cloud.play = func(ctx context.Context, mp3 []byte) error {
		if string(mp3) == "first" {
			close(firstPlaying)
			<-releaseFirst
			return ctx.Err()
		}
		close(secondPlaying)
		<-releaseSecond
		err := ctx.Err()
		secondErr <- err
		return err
	}

	g := NewGateway(cloud, nil, nil)

	firstDone := make(chan struct{})
	go func() {
		g.Speak(context.Background(), "first", domain.DefaultTTSOptions(), "key")
		close(firstDone)
	}()
	<-firstPlaying

	secondDone := make(chan struct{})
	go func() {
		g.Speak(context.Background(), "second", domain.DefaultTTSOptions(), "key")
		close(secondDone)
	}()

	// Let the superseded utterance run its cleanup while the new one is
	// still playing, then make sure the new one was left untouched.
	<-secondPlaying
	close(releaseFirst)
	<-firstDone
	close(releaseSecond)
	<-secondDone

	if err := <-secondErr; err != nil {
		t.Fatalf("replacement utterance was canceled by the abandoned one: %v", err)
	}
}

func TestStopWithoutUtteranceIsNoop(t *testing.T) {
	g := NewGateway(nil, nil, nil)
	g.Stop()
	g.Stop()
}

func TestValidateAPIKeyEmptyKey(t *testing.T) {
	g := NewGateway(NewCloudClient(""), nil, nil)
	if g.ValidateAPIKey(context.Background(), "") {
		t.Fatal("empty key must never validate")
	}
}
