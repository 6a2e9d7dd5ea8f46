package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/slangify-backend/internal/platform/ctxutil"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
)

type Vision interface {
	OCRImageBytes(ctx context.Context, img []byte, mimeType string) (*VisionOCRResult, error)
	Close() error
}

type VisionOCRResult struct {
	Provider    string  `json:"provider"`
	MimeType    string  `json:"mime_type,omitempty"`
	PrimaryText string  `json:"primary_text"`
	Confidence  float64 `json:"confidence,omitempty"`
}

type visionService struct {
	log          *logger.Logger
	visionClient *vision.ImageAnnotatorClient
}

func NewVision(log *logger.Logger) (Vision, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Vision")

	ctx := context.Background()
	vClient, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &visionService{log: slog, visionClient: vClient}, nil
}

func (s *visionService) Close() error {
	if s == nil || s.visionClient == nil {
		return nil
	}
	return s.visionClient.Close()
}

func (s *visionService) OCRImageBytes(ctx context.Context, img []byte, mimeType string) (*VisionOCRResult, error) {
	if len(img) == 0 {
		return &VisionOCRResult{Provider: "gcp_vision", MimeType: mimeType, PrimaryText: ""}, nil
	}

	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: img},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
		},
	}

	br := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}}
	resp, err := s.visionClient.BatchAnnotateImages(ctx, br)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &VisionOCRResult{Provider: "gcp_vision", MimeType: mimeType, PrimaryText: ""}, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	fta := r0.FullTextAnnotation
	if fta == nil || strings.TrimSpace(fta.Text) == "" {
		return &VisionOCRResult{Provider: "gcp_vision", MimeType: mimeType, PrimaryText: ""}, nil
	}

	primary := collapseWhitespace(fta.Text)
	conf := 0.0
	if len(fta.Pages) > 0 && fta.Pages[0] != nil {
		conf = avgBlockConfidence(fta.Pages[0].Blocks)
	}

	return &VisionOCRResult{
		Provider:    "gcp_vision",
		MimeType:    mimeType,
		PrimaryText: primary,
		Confidence:  conf,
	}, nil
}

func avgBlockConfidence(blocks []*visionpb.Block) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, b := range blocks {
		if b == nil {
			continue
		}
		sum += float64(b.Confidence)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
