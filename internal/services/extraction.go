package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

const (
	fallbackNoTextDetected  = "No text detected in image"
	fallbackExtractionError = "Error processing image"
)

// ExtractionInput is what the generation step receives after the image has
// been resolved. FromImage records provenance so the caller can be told the
// translation was based on image content.
type ExtractionInput struct {
	Text       string
	FromImage  bool
	Degraded   bool
	Confidence float64
}

// ExtractionService turns an optional image plus the user's original text into
// the single input string for generation. It never fails the pipeline: every
// extraction outcome degrades to a usable fallback string.
type ExtractionService interface {
	ResolveInput(ctx context.Context, userText string, image []byte, mimeType string) ExtractionInput
}

type extractionService struct {
	log     *logger.Logger
	vision  gcp.Vision
	timeout time.Duration
}

// NewExtractionService wires the OCR adapter. vision may be nil; extraction
// then always degrades to the text fallback path.
func NewExtractionService(log *logger.Logger, vision gcp.Vision, timeout time.Duration) ExtractionService {
	serviceLog := log.With("service", "ExtractionService")
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &extractionService{log: serviceLog, vision: vision, timeout: timeout}
}

func (es *extractionService) ResolveInput(ctx context.Context, userText string, image []byte, mimeType string) ExtractionInput {
	userText = strings.TrimSpace(userText)
	if len(image) == 0 {
		return ExtractionInput{Text: userText}
	}

	if es.vision == nil {
		es.log.Warn("Image attached but no OCR backend configured")
		return es.fallback(userText, fallbackExtractionError)
	}

	ocrCtx, cancel := context.WithTimeout(ctx, es.timeout)
	defer cancel()

	result, err := es.vision.OCRImageBytes(ocrCtx, image, mimeType)
	if err != nil {
		es.log.Warn("OCR failed, continuing with fallback text", "error", err)
		return es.fallback(userText, fallbackExtractionError)
	}
	if result == nil || strings.TrimSpace(result.PrimaryText) == "" {
		return es.fallback(userText, fallbackNoTextDetected)
	}

	extracted := strings.TrimSpace(result.PrimaryText)
	if userText != "" {
		return ExtractionInput{
			Text:       userText + "\n\n" + extracted,
			FromImage:  true,
			Confidence: result.Confidence,
		}
	}
	return ExtractionInput{Text: extracted, FromImage: true, Confidence: result.Confidence}
}

func (es *extractionService) fallback(userText, placeholder string) ExtractionInput {
	if userText != "" {
		return ExtractionInput{Text: userText, Degraded: true}
	}
	return ExtractionInput{Text: placeholder, Degraded: true}
}
