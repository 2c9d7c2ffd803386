// services/detection_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/detect"
	"github.com/geo-agent/geo-workflows/internal/models"
)

type detectionService struct {
	cfg *config.Config
}

func NewDetectionService(cfg *config.Config) DetectionService {
	return &detectionService{cfg: cfg}
}

// Run validates the request at the boundary and hands it to the detection
// core. The core itself is total: everything that can be rejected is
// rejected here, before detection starts.
func (s *detectionService) Run(ctx context.Context, req *models.DetectionRequest) (*models.DetectionReport, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	if req.LeadWindowChars == 0 {
		req.LeadWindowChars = s.cfg.Detection.LeadWindowChars
	}
	if req.MaxConcurrency == 0 {
		req.MaxConcurrency = s.cfg.Detection.MaxConcurrentRuns
	}

	fmt.Printf("[DetectionService.Run] Processing %d answers against %d brands (mode=%s)\n",
		len(req.Answers), len(req.Brands), req.MatchMode)

	return detect.RunReport(ctx, req), nil
}

func (s *detectionService) validate(req *models.DetectionRequest) error {
	if req == nil {
		return fmt.Errorf("detection request is nil")
	}
	mode, err := models.ParseMatchMode(string(req.MatchMode))
	if err != nil {
		return err
	}
	// Normalize so an omitted mode reaches the matcher as exact_only
	req.MatchMode = mode
	if req.LeadWindowChars < 0 {
		return fmt.Errorf("lead window must be positive, got %d", req.LeadWindowChars)
	}
	for i, b := range req.Brands {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("brand %d has an empty name", i)
		}
		if len(b.Aliases) == 0 {
			return fmt.Errorf("brand %q has no aliases; include at least the name itself", b.Name)
		}
	}
	return nil
}
