package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/llm"
)

type stubClient struct {
	last  *llm.ChatRequest
	reply string
	err   error
}

func (s *stubClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Choices: []llm.Choice{{Message: llm.ResponseMessage{Content: s.reply}}}}, nil
}

func (s *stubClient) Close() error { return nil }

func newTestConsole(t *testing.T, client *stubClient, apiKey string) (*console, *bytes.Buffer) {
	t.Helper()
	ctrl := controller.New(func(string) (llm.Client, error) { return client, nil })
	var out bytes.Buffer
	return &console{ctrl: ctrl, apiKey: apiKey, out: &out}, &out
}

func writeMislabeledPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	// png bytes under a .jpg name; the format comes from the content
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConsoleAsk(t *testing.T) {
	client := &stubClient{reply: "A white pixel."}
	c, out := newTestConsole(t, client, "gsk_key")

	c.handle(context.Background(), ":image "+writeMislabeledPNG(t))
	if !strings.Contains(out.String(), "Loaded photo.jpg (png, 4x3)") {
		t.Fatalf("unexpected load output %q", out.String())
	}

	out.Reset()
	c.handle(context.Background(), "what is this?")
	if strings.TrimSpace(out.String()) != "A white pixel." {
		t.Fatalf("unexpected answer %q", out.String())
	}
	if client.last == nil || !strings.HasPrefix(client.last.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,") {
		t.Fatalf("request should carry the sniffed MIME type")
	}
}

func TestConsoleSamplingCommands(t *testing.T) {
	client := &stubClient{reply: "ok"}
	c, out := newTestConsole(t, client, "gsk_key")
	ctx := context.Background()

	c.handle(ctx, ":temp 0")
	c.handle(ctx, ":topp 2")
	c.handle(ctx, ":max 64")
	want := "image=(none) max_tokens=64 temperature=0.00 top_p=1.00"
	if !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in %q", want, out.String())
	}

	out.Reset()
	c.handle(ctx, ":temp warm")
	if !strings.Contains(out.String(), "usage: :temp") {
		t.Fatalf("expected usage, got %q", out.String())
	}

	out.Reset()
	c.handle(ctx, ":clear")
	if !strings.Contains(out.String(), "max_tokens=512 temperature=0.70 top_p=0.90") {
		t.Fatalf("clear should restore defaults, got %q", out.String())
	}
}

func TestConsoleReportsValidationAndServiceErrors(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	c, out := newTestConsole(t, client, "")
	ctx := context.Background()

	c.handle(ctx, "describe")
	if strings.TrimSpace(out.String()) != "Input Error: Please enter a valid GROQ Key." {
		t.Fatalf("unexpected output %q", out.String())
	}

	c.apiKey = "gsk_key"
	out.Reset()
	c.handle(ctx, "describe")
	if strings.TrimSpace(out.String()) != "Input Error: Please upload an image." {
		t.Fatalf("unexpected output %q", out.String())
	}

	c.handle(ctx, ":image "+writeMislabeledPNG(t))
	out.Reset()
	c.handle(ctx, "describe")
	got := strings.TrimSpace(out.String())
	if !strings.HasPrefix(got, "API Error: Failed to get response from LLM API: ") || !strings.Contains(got, "connection refused") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestConsoleQuitAndUnknown(t *testing.T) {
	c, out := newTestConsole(t, &stubClient{}, "k")
	if c.handle(context.Background(), ":bogus") {
		t.Fatalf("unknown command must not quit")
	}
	if !strings.Contains(out.String(), "unknown command :bogus") {
		t.Fatalf("unexpected output %q", out.String())
	}
	out.Reset()
	c.handle(context.Background(), ":image cat.gif")
	if !strings.Contains(out.String(), `Error: Failed to load image: unsupported file type ".gif"`) {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !c.handle(context.Background(), ":quit") {
		t.Fatalf(":quit should end the session")
	}
}
