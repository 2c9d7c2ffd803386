// services/campaign_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/detect"
	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/internal/repository"
)

type campaignService struct {
	cfg         *config.Config
	repos       *repository.Manager
	costService CostService
	cache       AnswerCache
	// newProvider is swappable so tests can stub the provider layer.
	newProvider func(cfg *config.Config, model string, costService CostService) AIProvider
}

func NewCampaignService(cfg *config.Config, repos *repository.Manager, costService CostService, cache AnswerCache) CampaignService {
	return &campaignService{
		cfg:         cfg,
		repos:       repos,
		costService: costService,
		cache:       cache,
		newProvider: NewProviderForModel,
	}
}

func (s *campaignService) CreateCampaign(ctx context.Context, input *CreateCampaignInput) (*models.Campaign, error) {
	if input == nil {
		return nil, fmt.Errorf("campaign input is nil")
	}
	if len(input.Prompts) == 0 {
		return nil, fmt.Errorf("campaign needs at least one prompt")
	}
	if input.Model == "" {
		return nil, fmt.Errorf("campaign model is required")
	}
	matchMode, err := models.ParseMatchMode(input.MatchMode)
	if err != nil {
		return nil, err
	}
	if input.LeadWindowChars < 0 {
		return nil, fmt.Errorf("lead window must be positive, got %d", input.LeadWindowChars)
	}

	// Validate the company exists before writing anything
	if _, err := s.repos.Companies.GetByID(ctx, input.CompanyID); err != nil {
		return nil, err
	}

	runsPerPrompt := input.RunsPerPrompt
	if runsPerPrompt <= 0 {
		runsPerPrompt = 1
	}
	leadWindow := input.LeadWindowChars
	if leadWindow == 0 {
		leadWindow = s.cfg.Detection.LeadWindowChars
	}

	now := time.Now().UTC()
	campaign := &models.Campaign{
		CampaignID:      uuid.New(),
		CompanyID:       input.CompanyID,
		Model:           input.Model,
		MatchMode:       matchMode,
		LeadWindowChars: leadWindow,
		RunsPerPrompt:   runsPerPrompt,
		Status:          models.CampaignStatusQueued,
		TotalRuns:       len(input.Prompts) * runsPerPrompt,
		Scheduled:       input.Scheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repos.Campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}

	prompts := make([]*models.CampaignPrompt, len(input.Prompts))
	for i, text := range input.Prompts {
		prompts[i] = &models.CampaignPrompt{
			CampaignPromptID: uuid.New(),
			CampaignID:       campaign.CampaignID,
			PromptText:       text,
			OrderIndex:       i,
		}
	}
	if err := s.repos.Prompts.CreateBatch(ctx, prompts); err != nil {
		return nil, err
	}

	fmt.Printf("[CampaignService.CreateCampaign] Created campaign %s: %d prompts x %d runs on %s\n",
		campaign.CampaignID, len(prompts), runsPerPrompt, campaign.Model)

	return campaign, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	return s.repos.Campaigns.GetByID(ctx, campaignID)
}

// RunCampaign executes the full prompt matrix for a campaign: every prompt is
// asked runs_per_prompt times, each answer is run through mention detection,
// and the per-run results are persisted before metrics are recomputed.
func (s *campaignService) RunCampaign(ctx context.Context, campaignID uuid.UUID) (*CampaignRunSummary, error) {
	campaign, err := s.repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	company, err := s.repos.Companies.GetByID(ctx, campaign.CompanyID)
	if err != nil {
		return nil, err
	}
	prompts, err := s.repos.Prompts.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("campaign %s has no prompts", campaignID)
	}

	if err := s.repos.Campaigns.UpdateStatus(ctx, campaignID, models.CampaignStatusRunning); err != nil {
		return nil, err
	}

	// Scheduled campaigns re-run; clear the previous result set first so
	// metrics reflect only the current pass.
	if err := s.repos.Runs.DeleteByCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	provider := s.newProvider(s.cfg, campaign.Model, s.costService)
	brands := brandsForCompany(company)

	totalRuns := len(prompts) * campaign.RunsPerPrompt
	fmt.Printf("[CampaignService.RunCampaign] Campaign %s: executing %d runs on %s\n",
		campaignID, totalRuns, campaign.Model)

	type runJob struct {
		prompt   *models.CampaignPrompt
		runIndex int
	}
	jobs := make([]runJob, 0, totalRuns)
	for _, p := range prompts {
		for i := 0; i < campaign.RunsPerPrompt; i++ {
			jobs = append(jobs, runJob{prompt: p, runIndex: i})
		}
	}

	var (
		mu            sync.Mutex
		completedRuns int
		totalCost     float64
		runErrors     []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Detection.MaxConcurrentRuns)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			run, err := s.executeRun(gctx, campaign, company, brands, provider, job.prompt, job.runIndex)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				runErrors = append(runErrors, fmt.Sprintf("prompt %d run %d: %v", job.prompt.OrderIndex, job.runIndex, err))
				// One failed run does not abort the matrix
				return nil
			}
			completedRuns++
			totalCost += run.Cost
			if err := s.repos.Campaigns.UpdateProgress(gctx, campaignID, completedRuns); err != nil {
				fmt.Printf("[CampaignService.RunCampaign] Progress update failed: %v\n", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	finalStatus := models.CampaignStatusDone
	if completedRuns == 0 {
		finalStatus = models.CampaignStatusError
	}
	if err := s.repos.Campaigns.UpdateStatus(ctx, campaignID, finalStatus); err != nil {
		return nil, err
	}

	summary := &CampaignRunSummary{
		CampaignID:       campaignID,
		TotalRuns:        totalRuns,
		CompletedRuns:    completedRuns,
		FailedRuns:       totalRuns - completedRuns,
		TotalCost:        totalCost,
		ProcessingErrors: runErrors,
	}

	if completedRuns > 0 {
		metrics, err := s.CampaignMetrics(ctx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute campaign metrics: %w", err)
		}
		summary.Metrics = metrics

		// Visibility is the target brand's mention rate on a 0-100 scale.
		if target, ok := metrics.ByBrand[company.Name]; ok {
			summary.Visibility = target.MentionRate * 100
		}
		if err := s.repos.Campaigns.SetVisibility(ctx, campaignID, summary.Visibility); err != nil {
			return nil, err
		}
	}

	fmt.Printf("[CampaignService.RunCampaign] Campaign %s finished: %d/%d runs, cost $%.4f\n",
		campaignID, completedRuns, totalRuns, totalCost)

	return summary, nil
}

// executeRun asks the provider one question (cache read-through) and runs
// mention detection over the answer.
func (s *campaignService) executeRun(ctx context.Context, campaign *models.Campaign, company *models.Company, brands []models.Brand, provider AIProvider, prompt *models.CampaignPrompt, runIndex int) (*models.Run, error) {
	resp, err := s.askProvider(ctx, provider, campaign.Model, prompt.PromptText)
	if err != nil {
		return nil, err
	}

	summary := detect.DetectAnswer(resp.Response, brands, campaign.MatchMode)

	run := &models.Run{
		RunID:            uuid.New(),
		CampaignID:       campaign.CampaignID,
		CampaignPromptID: prompt.CampaignPromptID,
		RunIndex:         runIndex,
		Model:            campaign.Model,
		ResponseText:     resp.Response,
		FirstPos:         -1,
		CompHits:         models.HitCounts{},
		Sources:          models.StringList(resp.Citations),
		Cost:             resp.Cost,
		CreatedAt:        time.Now().UTC(),
	}

	if target, ok := summary[company.Name]; ok {
		run.AppearAnswer = true
		run.AppearLead = target.FirstIndex < campaign.LeadWindowChars
		run.FirstPos = target.FirstIndex
		run.BrandHits = target.Total
	}
	for _, comp := range company.Competitors {
		if hit, ok := summary[comp]; ok {
			run.CompHits[comp] = hit.Total
		}
	}

	if err := s.repos.Runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *campaignService) askProvider(ctx context.Context, provider AIProvider, model, prompt string) (*AIResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, provider.GetProviderName(), model, prompt)
		if err != nil {
			fmt.Printf("[CampaignService.askProvider] Cache read failed, asking provider: %v\n", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	resp, err := provider.RunQuestion(ctx, prompt, false, nil)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, provider.GetProviderName(), model, prompt, resp); err != nil {
			fmt.Printf("[CampaignService.askProvider] Cache write failed: %v\n", err)
		}
	}
	return resp, nil
}

// CampaignMetrics recomputes aggregate metrics from the persisted answer
// texts. Re-detecting from stored text keeps the numbers consistent with the
// current matcher instead of trusting whatever was computed at run time.
func (s *campaignService) CampaignMetrics(ctx context.Context, campaignID uuid.UUID) (*models.CampaignMetrics, error) {
	campaign, err := s.repos.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	company, err := s.repos.Companies.GetByID(ctx, campaign.CompanyID)
	if err != nil {
		return nil, err
	}
	prompts, err := s.repos.Prompts.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	runs, err := s.repos.Runs.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("campaign %s has no completed runs", campaignID)
	}

	promptText := make(map[uuid.UUID]string, len(prompts))
	for _, p := range prompts {
		promptText[p.CampaignPromptID] = p.PromptText
	}

	answers := make([]models.Answer, len(runs))
	for i, run := range runs {
		answers[i] = models.Answer{
			PromptText: promptText[run.CampaignPromptID],
			AnswerText: run.ResponseText,
		}
	}

	req := &models.DetectionRequest{
		Answers:         answers,
		Brands:          brandsForCompany(company),
		MatchMode:       campaign.MatchMode,
		LeadWindowChars: campaign.LeadWindowChars,
		MaxConcurrency:  s.cfg.Detection.MaxConcurrentRuns,
	}
	report := detect.RunReport(ctx, req)
	return &report.Metrics, nil
}

// ScheduledCampaignIDs returns the campaigns flagged for recurring re-runs.
func (s *campaignService) ScheduledCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	campaigns, err := s.repos.Campaigns.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.CampaignID
	}
	return ids, nil
}

// brandsForCompany builds the tracked brand set: the target company with its
// alias variants, plus each competitor matched on its name alone.
func brandsForCompany(company *models.Company) []models.Brand {
	target := models.Brand{
		Name:    company.Name,
		Aliases: append([]string{company.Name}, company.Variants...),
	}

	brands := []models.Brand{target}
	competitors := append([]string(nil), company.Competitors...)
	sort.Strings(competitors)
	for _, comp := range competitors {
		if comp == "" || comp == company.Name {
			continue
		}
		brands = append(brands, models.Brand{Name: comp, Aliases: []string{comp}})
	}
	return brands
}
