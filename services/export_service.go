// services/export_service.go
package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/repository"
)

// exportService writes a campaign's run rows to a CSV file on disk.
type exportService struct {
	cfg   *config.Config
	repos *repository.Manager
}

func NewExportService(cfg *config.Config, repos *repository.Manager) ExportService {
	return &exportService{cfg: cfg, repos: repos}
}

var exportHeader = []string{
	"campaign_id", "prompt", "run_index", "model", "appear_answer",
	"appear_lead", "first_pos", "brand_hits", "comp_hits", "sources",
	"cost", "created_at",
}

// ExportCampaignCSV writes all runs of a campaign to a timestamped CSV file
// under the configured export directory and returns the file path.
func (s *exportService) ExportCampaignCSV(ctx context.Context, campaignID uuid.UUID) (string, error) {
	campaign, err := s.repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	prompts, err := s.repos.Prompts.ListByCampaign(ctx, campaignID)
	if err != nil {
		return "", err
	}
	runs, err := s.repos.Runs.ListByCampaign(ctx, campaignID)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("campaign %s has no runs to export", campaignID)
	}

	promptText := make(map[uuid.UUID]string, len(prompts))
	for _, p := range prompts {
		promptText[p.CampaignPromptID] = p.PromptText
	}

	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("campaign_%s_%s.csv", campaign.CampaignID, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(s.cfg.ExportDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(exportHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, run := range runs {
		compHits, err := json.Marshal(run.CompHits)
		if err != nil {
			return "", fmt.Errorf("failed to encode comp hits: %w", err)
		}

		record := []string{
			campaign.CampaignID.String(),
			promptText[run.CampaignPromptID],
			strconv.Itoa(run.RunIndex),
			run.Model,
			strconv.FormatBool(run.AppearAnswer),
			strconv.FormatBool(run.AppearLead),
			strconv.Itoa(run.FirstPos),
			strconv.Itoa(run.BrandHits),
			string(compHits),
			strings.Join(run.Sources, ";"),
			strconv.FormatFloat(run.Cost, 'f', 6, 64),
			run.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write run row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}

	fmt.Printf("[ExportService.ExportCampaignCSV] Exported %d runs to %s\n", len(runs), path)
	return path, nil
}
