// Package controller holds the session state of an image query and bridges it
// to the completion service.
package controller

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/nachoal/visionari-go/llm"
	"github.com/nachoal/visionari-go/llm/groq"
	"github.com/nachoal/visionari-go/logging"
	"github.com/nachoal/visionari-go/preview"
)

// ClientFactory builds a completion client for one API key
type ClientFactory func(apiKey string) (llm.Client, error)

// Request is a validated snapshot of the session, ready to be executed
type Request struct {
	ID        string
	APIKey    string
	Query     string
	ImagePath string
	Model     string
	Sampling  Sampling
}

// Controller validates user input, encodes the selected image and calls the
// completion service. It is not safe for concurrent use; front ends drive it
// from a single event loop.
type Controller struct {
	newClient ClientFactory
	decoder   preview.Decoder
	readFile  func(string) ([]byte, error)
	model     string
	defaults  Sampling
	logger    log.Interface

	session Session
}

// Option configures a Controller
type Option func(*Controller)

// WithModel sets the model id sent with every request
func WithModel(model string) Option {
	return func(c *Controller) {
		if model != "" {
			c.model = model
		}
	}
}

// WithDefaults sets the sampling parameters used at startup and after Clear
func WithDefaults(s Sampling) Option {
	return func(c *Controller) {
		c.defaults = s.Clamped()
	}
}

// WithDecoder replaces the image decoder
func WithDecoder(d preview.Decoder) Option {
	return func(c *Controller) {
		c.decoder = d
	}
}

// WithReadFile replaces the function used to read image bytes
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Controller) {
		c.readFile = fn
	}
}

// WithLogger sets the logger
func WithLogger(l log.Interface) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller with an empty session
func New(newClient ClientFactory, opts ...Option) *Controller {
	c := &Controller{
		newClient: newClient,
		decoder:   preview.FileDecoder{},
		readFile:  os.ReadFile,
		model:     groq.DefaultModel,
		defaults:  DefaultSampling(),
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = Session{Sampling: c.defaults}
	return c
}

// GroqFactory returns a ClientFactory that creates Groq clients with opts
func GroqFactory(opts ...llm.ClientOption) ClientFactory {
	return func(apiKey string) (llm.Client, error) {
		return groq.NewClient(append([]llm.ClientOption{llm.WithAPIKey(apiKey)}, opts...)...)
	}
}

// Session returns a copy of the current session state
func (c *Controller) Session() Session {
	return c.session
}

// Sampling returns the current sampling parameters
func (c *Controller) Sampling() Sampling {
	return c.session.Sampling
}

// Defaults returns the sampling parameters restored by Clear
func (c *Controller) Defaults() Sampling {
	return c.defaults
}

// ImagePath returns the selected image path, or "" when none is selected
func (c *Controller) ImagePath() string {
	return c.session.ImagePath
}

// Model returns the model id used for requests
func (c *Controller) Model() string {
	return c.model
}

// SelectImage decodes path and, on success, makes it the session's image.
// On failure the previous selection is kept.
func (c *Controller) SelectImage(path string) (*preview.Image, error) {
	if !preview.HasAllowedExtension(path) {
		err := fmt.Errorf("%w %q (want %s)", ErrUnsupportedType, filepath.Ext(path), strings.Join(preview.AllowedExtensions, ", "))
		c.logger.WithField("path", path).Warn("image type rejected")
		return nil, &LoadError{Path: path, Err: err}
	}
	img, err := c.decoder.Decode(path)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("image load failed")
		return nil, &LoadError{Path: path, Err: err}
	}
	c.session.ImagePath = path
	c.logger.WithFields(log.Fields{
		"path":   path,
		"format": img.Format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Info("image selected")
	return img, nil
}

// SetQuery records the last entered query
func (c *Controller) SetQuery(q string) {
	c.session.Query = q
}

// SetSampling replaces all sampling parameters, clamped to their ranges
func (c *Controller) SetSampling(s Sampling) {
	c.session.Sampling = s.Clamped()
}

// SetMaxTokens sets the max output tokens, clamped to [1, 1000000]
func (c *Controller) SetMaxTokens(n int) {
	s := c.session.Sampling
	s.MaxTokens = n
	c.SetSampling(s)
}

// SetTemperature sets the temperature, clamped to [0, 1]
func (c *Controller) SetTemperature(v float64) {
	s := c.session.Sampling
	s.Temperature = v
	c.SetSampling(s)
}

// SetTopP sets top-p, clamped to (0, 1]
func (c *Controller) SetTopP(v float64) {
	s := c.session.Sampling
	s.TopP = v
	c.SetSampling(s)
}

// Clear resets the session: no image, no query, default sampling
func (c *Controller) Clear() {
	c.session = Session{Sampling: c.defaults}
	c.logger.Debug("session cleared")
}

// Prepare validates the inputs against the session and snapshots a Request.
// Checks run in order (key, image, query) and stop at the first failure.
func (c *Controller) Prepare(apiKey, query string) (Request, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Request{}, ErrMissingKey
	}
	if !c.session.HasImage() {
		return Request{}, ErrMissingImage
	}
	if strings.TrimSpace(query) == "" || query == Placeholder {
		return Request{}, ErrMissingQuery
	}
	return Request{
		ID:        uuid.NewString(),
		APIKey:    strings.TrimSpace(apiKey),
		Query:     query,
		ImagePath: c.session.ImagePath,
		Model:     c.model,
		Sampling:  c.session.Sampling,
	}, nil
}

// Execute reads and encodes the image and performs one completion call.
// It does not touch the session, so it may run off the event loop.
func (c *Controller) Execute(ctx context.Context, req Request) (string, error) {
	logger := c.logger.WithFields(log.Fields{
		"run_id":      req.ID,
		"path":        req.ImagePath,
		"model":       req.Model,
		"max_tokens":  req.Sampling.MaxTokens,
		"temperature": req.Sampling.Temperature,
		"top_p":       req.Sampling.TopP,
	})

	data, err := c.readFile(req.ImagePath)
	if err != nil {
		logger.WithError(err).Error("image read failed")
		return "", &ImageReadError{Path: req.ImagePath, Err: err}
	}
	mime := preview.DetectMIME(data)
	logger.WithFields(log.Fields{"mime": mime, "bytes": len(data)}).Debug("image encoded")

	client, err := c.newClient(req.APIKey)
	if err != nil {
		logger.WithError(err).Error("client setup failed")
		return "", &ServiceError{Err: err}
	}
	defer client.Close()

	chatReq := llm.NewVisionRequest(req.Model, req.Query, llm.EncodeDataURL(mime, data))
	chatReq.MaxTokens = req.Sampling.MaxTokens
	chatReq.Temperature = req.Sampling.Temperature
	chatReq.TopP = req.Sampling.TopP

	start := time.Now()
	resp, err := client.Chat(ctx, chatReq)
	if err != nil {
		logger.WithError(err).WithField("duration", time.Since(start)).Error("completion failed")
		return "", &ServiceError{Err: err}
	}

	text, err := llm.FirstChoiceText(resp)
	if err != nil {
		logger.WithError(err).Error("completion returned no text")
		return "", &ServiceError{Err: err}
	}

	logger.WithFields(log.Fields{
		"duration":      time.Since(start),
		"response_len":  len(text),
		"finish_reason": resp.Choices[0].FinishReason,
	}).Info("completion received")
	return text, nil
}

// Submit validates and executes in one blocking step
func (c *Controller) Submit(ctx context.Context, apiKey, query string) (string, error) {
	req, err := c.Prepare(apiKey, query)
	if err != nil {
		c.logger.WithError(err).Debug("submission rejected")
		return "", err
	}
	return c.Execute(ctx, req)
}
