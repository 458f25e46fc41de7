package controller

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

	"github.com/google/go-cmp/cmp"

	"github.com/nachoal/visionari-go/llm"
	"github.com/nachoal/visionari-go/preview"
)

type fakeClient struct {
	requests []*llm.ChatRequest
	reply    string
	err      error
	closed   bool
}

func (f *fakeClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Choices: []llm.Choice{{Message: llm.ResponseMessage{Role: llm.RoleAssistant, Content: f.reply}}}}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	ctrl   *Controller
	client *fakeClient
	keys   []string
	reads  int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{client: &fakeClient{reply: "A red square."}}
	factory := func(apiKey string) (llm.Client, error) {
		h.keys = append(h.keys, apiKey)
		return h.client, nil
	}
	readFile := func(path string) ([]byte, error) {
		h.reads++
		return os.ReadFile(path)
	}
	h.ctrl = New(factory, append([]Option{WithReadFile(readFile)}, opts...)...)
	return h
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "square.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestSubmitMissingKeyDoesNoIO(t *testing.T) {
	h := newHarness(t)
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatalf("SelectImage: %v", err)
	}

	for _, key := range []string{"", "   ", "\t\n"} {
		_, err := h.ctrl.Submit(context.Background(), key, "What is in this image?")
		if !errors.Is(err, ErrMissingKey) {
			t.Fatalf("key %q: expected ErrMissingKey, got %v", key, err)
		}
	}
	if h.reads != 0 || len(h.keys) != 0 {
		t.Fatalf("validation failure must not read files or build clients (reads=%d clients=%d)", h.reads, len(h.keys))
	}
}

func TestSubmitMissingImage(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?")
	if !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
}

func TestSubmitKeyCheckedBeforeImage(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Submit(context.Background(), "", "")
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey first, got %v", err)
	}
}

func TestSubmitMissingQuery(t *testing.T) {
	h := newHarness(t)
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatalf("SelectImage: %v", err)
	}
	// whitespace-only queries are treated as missing, not sent
	for _, q := range []string{"", "  ", "\n\t", Placeholder} {
		_, err := h.ctrl.Submit(context.Background(), "gsk_key", q)
		if !errors.Is(err, ErrMissingQuery) {
			t.Fatalf("query %q: expected ErrMissingQuery, got %v", q, err)
		}
	}
	if len(h.client.requests) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestSelectImageFailureKeepsPreviousPath(t *testing.T) {
	h := newHarness(t)
	good := writePNG(t)
	if _, err := h.ctrl.SelectImage(good); err != nil {
		t.Fatalf("SelectImage: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := h.ctrl.SelectImage(bad)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T (%v)", err, err)
	}
	if loadErr.Path != bad {
		t.Fatalf("unexpected path in error: %q", loadErr.Path)
	}
	if !strings.HasPrefix(Message(err), "Failed to load image: ") {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if h.ctrl.ImagePath() != good {
		t.Fatalf("failed load must not change the selected image, got %q", h.ctrl.ImagePath())
	}
}

type countingDecoder struct {
	calls int
}

func (d *countingDecoder) Decode(path string) (*preview.Image, error) {
	d.calls++
	return preview.Decode(path)
}

func TestSelectImageRejectsUnsupportedType(t *testing.T) {
	dec := &countingDecoder{}
	h := newHarness(t, WithDecoder(dec))

	_, err := h.ctrl.SelectImage(filepath.Join(t.TempDir(), "cat.gif"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) || Category(err) != CategoryError {
		t.Fatalf("expected a load error, got %T (%v)", err, err)
	}
	if !strings.HasPrefix(Message(err), `Failed to load image: unsupported file type ".gif"`) {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if dec.calls != 0 || h.ctrl.Session().HasImage() {
		t.Fatalf("rejected type must not be decoded or selected")
	}
}

func TestSelectImageUpperCaseExtension(t *testing.T) {
	h := newHarness(t)
	data, err := os.ReadFile(writePNG(t))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "IMG_0001.JPG")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.SelectImage(path); err != nil {
		t.Fatalf("upper-case extension should be accepted: %v", err)
	}
	if h.ctrl.ImagePath() != path {
		t.Fatalf("image not selected")
	}
}

func TestSelectImageFailureOnEmptySession(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.SelectImage(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if h.ctrl.Session().HasImage() {
		t.Fatalf("no image should be selected")
	}
}

func TestClearResetsSession(t *testing.T) {
	h := newHarness(t)
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatal(err)
	}
	h.ctrl.SetQuery("describe")
	h.ctrl.SetTemperature(0.1)
	h.ctrl.SetMaxTokens(42)

	h.ctrl.Clear()
	h.ctrl.Clear()

	want := Session{Sampling: DefaultSampling()}
	if diff := cmp.Diff(want, h.ctrl.Session()); diff != "" {
		t.Fatalf("session after clear (-want +got):\n%s", diff)
	}
}

func TestClearRestoresConfiguredDefaults(t *testing.T) {
	h := newHarness(t, WithDefaults(ClassicSampling()))
	h.ctrl.SetTopP(0.5)
	h.ctrl.Clear()
	if got := h.ctrl.Sampling(); got != ClassicSampling() {
		t.Fatalf("expected classic preset after clear, got %+v", got)
	}
}

func TestSamplingPassedVerbatim(t *testing.T) {
	h := newHarness(t)
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatal(err)
	}
	h.ctrl.SetTemperature(MinTemperature)

	if _, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	req := h.client.requests[0]
	if req.Temperature != 0.0 || req.TopP != 0.9 || req.MaxTokens != 512 {
		t.Fatalf("unexpected sampling: temperature=%v top_p=%v max_tokens=%v", req.Temperature, req.TopP, req.MaxTokens)
	}
}

func TestSamplingClamped(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetMaxTokens(0)
	h.ctrl.SetTemperature(1.7)
	h.ctrl.SetTopP(0)
	want := Sampling{MaxTokens: MinMaxTokens, Temperature: MaxTemperature, TopP: MinTopP}
	if got := h.ctrl.Sampling(); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	h.ctrl.SetMaxTokens(5000000)
	if got := h.ctrl.Sampling().MaxTokens; got != MaxMaxTokens {
		t.Fatalf("max tokens not clamped: %d", got)
	}
}

func TestSubmitEndToEnd(t *testing.T) {
	h := newHarness(t)
	path := writePNG(t)
	if _, err := h.ctrl.SelectImage(path); err != nil {
		t.Fatal(err)
	}

	out, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out != "A red square." {
		t.Fatalf("unexpected output %q", out)
	}
	if len(h.client.requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(h.client.requests))
	}
	if len(h.keys) != 1 || h.keys[0] != "gsk_key" {
		t.Fatalf("client built with unexpected keys %v", h.keys)
	}
	if !h.client.closed {
		t.Fatalf("client should be closed after the call")
	}

	data, _ := os.ReadFile(path)
	want := &llm.ChatRequest{
		Model: "llava-v1.5-7b-4096-preview",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: []llm.ContentPart{
				llm.TextPart("What is in this image?"),
				llm.ImagePart(llm.EncodeDataURL("image/png", data)),
			},
		}},
		Temperature: 0.7,
		MaxTokens:   512,
		TopP:        0.9,
	}
	if diff := cmp.Diff(want, h.client.requests[0]); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitServiceFailure(t *testing.T) {
	h := newHarness(t)
	h.client.err = errors.New("dial tcp: connection refused")
	path := writePNG(t)
	if _, err := h.ctrl.SelectImage(path); err != nil {
		t.Fatal(err)
	}

	out, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?")
	if out != "" {
		t.Fatalf("expected empty output on failure, got %q", out)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T (%v)", err, err)
	}
	if !strings.Contains(Message(err), "dial tcp: connection refused") || Category(err) != CategoryService {
		t.Fatalf("unexpected mapping: %q / %q", Category(err), Message(err))
	}
	if h.ctrl.ImagePath() != path {
		t.Fatalf("image selection must survive a failed submission")
	}
	if len(h.client.requests) != 1 {
		t.Fatalf("no retry expected, got %d requests", len(h.client.requests))
	}
}

func TestSubmitEmptyChoicesIsServiceFailure(t *testing.T) {
	h := newHarness(t)
	h.ctrl.newClient = func(string) (llm.Client, error) { return emptyClient{}, nil }
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatal(err)
	}
	_, err := h.ctrl.Submit(context.Background(), "k", "q")
	if !errors.Is(err, llm.ErrNoChoices) || Category(err) != CategoryService {
		t.Fatalf("expected service failure wrapping ErrNoChoices, got %v", err)
	}
}

type emptyClient struct{}

func (emptyClient) Chat(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{}, nil
}
func (emptyClient) Close() error { return nil }

func TestSubmitImageReadFailure(t *testing.T) {
	h := newHarness(t)
	path := writePNG(t)
	if _, err := h.ctrl.SelectImage(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	_, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?")
	var readErr *ImageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ImageReadError, got %T (%v)", err, err)
	}
	if !os.IsNotExist(errors.Unwrap(err)) {
		t.Fatalf("underlying cause should be preserved, got %v", errors.Unwrap(err))
	}
	if len(h.keys) != 0 {
		t.Fatalf("no client should be built when the image cannot be read")
	}
}

func TestClearAfterSuccessRequiresNewImage(t *testing.T) {
	h := newHarness(t)
	if _, err := h.ctrl.SelectImage(writePNG(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?"); err != nil {
		t.Fatal(err)
	}

	h.ctrl.Clear()
	if h.ctrl.ImagePath() != "" {
		t.Fatalf("image path should be unset after clear")
	}
	_, err := h.ctrl.Submit(context.Background(), "gsk_key", "What is in this image?")
	if !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage after clear, got %v", err)
	}
}

func TestPrepareSnapshotsSession(t *testing.T) {
	h := newHarness(t, WithModel("llama-3.2-11b-vision-preview"))
	path := writePNG(t)
	if _, err := h.ctrl.SelectImage(path); err != nil {
		t.Fatal(err)
	}
	req, err := h.ctrl.Prepare(" gsk_key ", "describe")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	h.ctrl.Clear()

	if req.ImagePath != path || req.Model != "llama-3.2-11b-vision-preview" || req.APIKey != "gsk_key" || req.ID == "" {
		t.Fatalf("unexpected request snapshot %+v", req)
	}
	if _, err := h.ctrl.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute after clear should use the snapshot: %v", err)
	}
}

func TestMessages(t *testing.T) {
	cases := []struct {
		err      error
		category string
		message  string
	}{
		{ErrMissingKey, CategoryInput, "Please enter a valid GROQ Key."},
		{ErrMissingImage, CategoryInput, "Please upload an image."},
		{ErrMissingQuery, CategoryInput, "Please enter a valid image query."},
		{&ImageReadError{Path: "x", Err: errors.New("gone")}, CategoryError, "Failed to process the image: gone"},
		{&ServiceError{Err: errors.New("401 invalid key")}, CategoryService, "Failed to get response from LLM API: 401 invalid key"},
	}
	for _, tc := range cases {
		if got := Category(tc.err); got != tc.category {
			t.Errorf("Category(%v) = %q, want %q", tc.err, got, tc.category)
		}
		if got := Message(tc.err); got != tc.message {
			t.Errorf("Message(%v) = %q, want %q", tc.err, got, tc.message)
		}
	}
}
