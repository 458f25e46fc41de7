package controller

import (
	"errors"
	"fmt"
)

// Validation errors. These are returned before any file or network I/O.
var (
	ErrMissingKey   = errors.New("missing API key")
	ErrMissingImage = errors.New("no image selected")
	ErrMissingQuery = errors.New("missing image query")
)

// ErrUnsupportedType is wrapped in a LoadError when the file extension is not
// one of preview.AllowedExtensions
var ErrUnsupportedType = errors.New("unsupported file type")

// Notification titles
const (
	CategoryInput   = "Input Error"
	CategoryError   = "Error"
	CategoryService = "API Error"
)

// LoadError is returned when a selected file cannot be decoded as an image
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ImageReadError is returned when the selected image can no longer be read
type ImageReadError struct {
	Path string
	Err  error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("read image %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error { return e.Err }

// ServiceError wraps any failure of the completion service call
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsValidation reports whether err came from input validation
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingKey) ||
		errors.Is(err, ErrMissingImage) ||
		errors.Is(err, ErrMissingQuery)
}

// Category returns the notification title for err
func Category(err error) string {
	var svc *ServiceError
	switch {
	case IsValidation(err):
		return CategoryInput
	case errors.As(err, &svc):
		return CategoryService
	default:
		return CategoryError
	}
}

// Message returns the text shown to the user for err
func Message(err error) string {
	var (
		loadErr *LoadError
		readErr *ImageReadError
		svcErr  *ServiceError
	)
	switch {
	case errors.Is(err, ErrMissingKey):
		return "Please enter a valid GROQ Key."
	case errors.Is(err, ErrMissingImage):
		return "Please upload an image."
	case errors.Is(err, ErrMissingQuery):
		return "Please enter a valid image query."
	case errors.As(err, &loadErr):
		return fmt.Sprintf("Failed to load image: %v", loadErr.Err)
	case errors.As(err, &readErr):
		return fmt.Sprintf("Failed to process the image: %v", readErr.Err)
	case errors.As(err, &svcErr):
		return fmt.Sprintf("Failed to get response from LLM API: %v", svcErr.Err)
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
