// services/campaign_service_test.go
package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/internal/repository"
	"github.com/geo-agent/geo-workflows/services/testutil"
)

// In-memory repositories for campaign service tests.

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*models.Company
}

func (r *fakeCompanyRepo) Create(ctx context.Context, c *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.CompanyID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, fmt.Errorf("company %s not found", id)
	}
	return c, nil
}

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*models.Campaign
}

func (r *fakeCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.CampaignID] = &cp
	return nil
}

func (r *fakeCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("campaign %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[id].Status = status
	return nil
}

func (r *fakeCampaignRepo) UpdateProgress(ctx context.Context, id uuid.UUID, completed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[id].CompletedRuns = completed
	return nil
}

func (r *fakeCampaignRepo) SetVisibility(ctx context.Context, id uuid.UUID, v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[id].Visibility = v
	return nil
}

func (r *fakeCampaignRepo) ListScheduled(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if c.Scheduled {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePromptRepo struct {
	mu      sync.Mutex
	prompts []*models.CampaignPrompt
}

func (r *fakePromptRepo) CreateBatch(ctx context.Context, prompts []*models.CampaignPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompts...)
	return nil
}

func (r *fakePromptRepo) ListByCampaign(ctx context.Context, id uuid.UUID) ([]*models.CampaignPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CampaignPrompt
	for _, p := range r.prompts {
		if p.CampaignID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []*models.Run
}

func (r *fakeRunRepo) Create(ctx context.Context, run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRunRepo) ListByCampaign(ctx context.Context, id uuid.UUID) ([]*models.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Run
	for _, run := range r.runs {
		if run.CampaignID == id {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeRunRepo) DeleteByCampaign(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.runs[:0]
	for _, run := range r.runs {
		if run.CampaignID != id {
			kept = append(kept, run)
		}
	}
	r.runs = kept
	return nil
}

// stubProvider returns canned answers and counts invocations.
type stubProvider struct {
	mu      sync.Mutex
	answers map[string]string
	calls   int
}

func (p *stubProvider) GetProviderName() string { return "stub" }

func (p *stubProvider) RunQuestion(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	answer, ok := p.answers[query]
	if !ok {
		return nil, fmt.Errorf("no canned answer for %q", query)
	}
	return &AIResponse{Response: answer, InputTokens: 10, OutputTokens: 20, Cost: 0.001}, nil
}

// memoryCache is a map-backed AnswerCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*AIResponse
}

func (c *memoryCache) Get(ctx context.Context, provider, model, prompt string) (*AIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[provider+"|"+model+"|"+prompt], nil
}

func (c *memoryCache) Set(ctx context.Context, provider, model, prompt string, resp *AIResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[provider+"|"+model+"|"+prompt] = resp
	return nil
}

func newTestCampaignService(provider AIProvider, cache AnswerCache) (*campaignService, *repository.Manager, *models.Company) {
	repos := &repository.Manager{
		Companies: &fakeCompanyRepo{companies: map[uuid.UUID]*models.Company{}},
		Campaigns: &fakeCampaignRepo{campaigns: map[uuid.UUID]*models.Campaign{}},
		Prompts:   &fakePromptRepo{},
		Runs:      &fakeRunRepo{},
	}

	company := testutil.SampleCompany()
	_ = repos.Companies.Create(context.Background(), company)

	cfg := &config.Config{
		Detection: config.DetectionConfig{LeadWindowChars: 300, MaxConcurrentRuns: 4},
	}

	svc := &campaignService{
		cfg:         cfg,
		repos:       repos,
		costService: NewCostService(),
		cache:       cache,
		newProvider: func(cfg *config.Config, model string, costService CostService) AIProvider {
			return provider
		},
	}
	return svc, repos, company
}

func TestCreateCampaignValidation(t *testing.T) {
	svc, _, company := newTestCampaignService(&stubProvider{}, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *CreateCampaignInput
	}{
		{"nil input", nil},
		{"no prompts", &CreateCampaignInput{CompanyID: company.CompanyID, Model: "gpt-4.1"}},
		{"no model", &CreateCampaignInput{CompanyID: company.CompanyID, Prompts: []string{"q"}}},
		{"bad match mode", &CreateCampaignInput{CompanyID: company.CompanyID, Prompts: []string{"q"}, Model: "gpt-4.1", MatchMode: "fuzzy"}},
		{"unknown company", &CreateCampaignInput{CompanyID: uuid.New(), Prompts: []string{"q"}, Model: "gpt-4.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateCampaign(ctx, tt.input); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCreateCampaignDefaults(t *testing.T) {
	svc, repos, company := newTestCampaignService(&stubProvider{}, nil)
	ctx := context.Background()

	campaign, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID: company.CompanyID,
		Prompts:   testutil.SampleQueries(),
		Model:     "gpt-4.1",
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	if campaign.RunsPerPrompt != 1 {
		t.Errorf("RunsPerPrompt = %d, want 1", campaign.RunsPerPrompt)
	}
	if campaign.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", campaign.TotalRuns)
	}
	if campaign.MatchMode != models.MatchModeExactOnly {
		t.Errorf("MatchMode = %q, want exact_only", campaign.MatchMode)
	}
	if campaign.LeadWindowChars != 300 {
		t.Errorf("LeadWindowChars = %d, want 300", campaign.LeadWindowChars)
	}
	if campaign.Status != models.CampaignStatusQueued {
		t.Errorf("Status = %q, want queued", campaign.Status)
	}

	prompts, _ := repos.Prompts.ListByCampaign(ctx, campaign.CampaignID)
	if len(prompts) != 3 {
		t.Fatalf("persisted %d prompts, want 3", len(prompts))
	}
	for i, p := range prompts {
		if p.OrderIndex != i {
			t.Errorf("prompt %d has order index %d", i, p.OrderIndex)
		}
	}
}

func TestRunCampaignEndToEnd(t *testing.T) {
	provider := &stubProvider{answers: map[string]string{
		"best pizza?":     "Seven Seventy is the best. Pizza Palace is fine too.",
		"where to order?": "Try any local pizzeria.",
	}}
	svc, repos, company := newTestCampaignService(provider, nil)
	ctx := context.Background()

	campaign, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID: company.CompanyID,
		Prompts:   []string{"best pizza?", "where to order?"},
		Model:     "gpt-4.1",
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	summary, err := svc.RunCampaign(ctx, campaign.CampaignID)
	if err != nil {
		t.Fatalf("RunCampaign failed: %v", err)
	}

	if summary.CompletedRuns != 2 || summary.FailedRuns != 0 {
		t.Fatalf("completed=%d failed=%d, want 2/0", summary.CompletedRuns, summary.FailedRuns)
	}
	if summary.Metrics == nil {
		t.Fatal("expected metrics on summary")
	}

	target := summary.Metrics.ByBrand["Seven Seventy"]
	if target.MentionRate != 0.5 {
		t.Errorf("target MentionRate = %v, want 0.5", target.MentionRate)
	}
	if summary.Visibility != 50.0 {
		t.Errorf("Visibility = %v, want 50", summary.Visibility)
	}

	runs, _ := repos.Runs.ListByCampaign(ctx, campaign.CampaignID)
	if len(runs) != 2 {
		t.Fatalf("persisted %d runs, want 2", len(runs))
	}
	for _, run := range runs {
		switch run.ResponseText {
		case "Seven Seventy is the best. Pizza Palace is fine too.":
			if !run.AppearAnswer || !run.AppearLead {
				t.Errorf("mention flags = %v/%v, want true/true", run.AppearAnswer, run.AppearLead)
			}
			if run.FirstPos != 0 {
				t.Errorf("FirstPos = %d, want 0", run.FirstPos)
			}
			if run.BrandHits != 1 {
				t.Errorf("BrandHits = %d, want 1", run.BrandHits)
			}
			if run.CompHits["Pizza Palace"] != 1 {
				t.Errorf("CompHits = %v, want Pizza Palace: 1", run.CompHits)
			}
		case "Try any local pizzeria.":
			if run.AppearAnswer {
				t.Error("expected no mention")
			}
			if run.FirstPos != -1 {
				t.Errorf("FirstPos = %d, want -1", run.FirstPos)
			}
		default:
			t.Errorf("unexpected response text: %q", run.ResponseText)
		}
	}

	stored, _ := repos.Campaigns.GetByID(ctx, campaign.CampaignID)
	if stored.Status != models.CampaignStatusDone {
		t.Errorf("Status = %q, want done", stored.Status)
	}
	if stored.CompletedRuns != 2 {
		t.Errorf("CompletedRuns = %d, want 2", stored.CompletedRuns)
	}
	if stored.Visibility != 50.0 {
		t.Errorf("stored Visibility = %v, want 50", stored.Visibility)
	}
}

func TestRunCampaignCacheReadThrough(t *testing.T) {
	provider := &stubProvider{answers: map[string]string{
		"best pizza?": "Seven Seventy wins.",
	}}
	cache := &memoryCache{entries: map[string]*AIResponse{}}
	svc, _, company := newTestCampaignService(provider, cache)
	// Serialize the matrix so cache behavior is deterministic
	svc.cfg.Detection.MaxConcurrentRuns = 1
	ctx := context.Background()

	campaign, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID:     company.CompanyID,
		Prompts:       []string{"best pizza?"},
		Model:         "gpt-4.1",
		RunsPerPrompt: 3,
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	summary, err := svc.RunCampaign(ctx, campaign.CampaignID)
	if err != nil {
		t.Fatalf("RunCampaign failed: %v", err)
	}
	if summary.CompletedRuns != 3 {
		t.Fatalf("CompletedRuns = %d, want 3", summary.CompletedRuns)
	}

	// All three runs ask the same question; the cache absorbs the repeats.
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 with cache", provider.calls)
	}
}

func TestRunCampaignProviderFailure(t *testing.T) {
	provider := &stubProvider{answers: map[string]string{}} // every call fails
	svc, _, company := newTestCampaignService(provider, nil)
	ctx := context.Background()

	campaign, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID: company.CompanyID,
		Prompts:   []string{"q1", "q2"},
		Model:     "gpt-4.1",
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	summary, err := svc.RunCampaign(ctx, campaign.CampaignID)
	if err != nil {
		t.Fatalf("RunCampaign returned error: %v", err)
	}

	if summary.CompletedRuns != 0 || summary.FailedRuns != 2 {
		t.Errorf("completed=%d failed=%d, want 0/2", summary.CompletedRuns, summary.FailedRuns)
	}
	if len(summary.ProcessingErrors) != 2 {
		t.Errorf("ProcessingErrors = %d, want 2", len(summary.ProcessingErrors))
	}

	stored, _ := svc.repos.Campaigns.GetByID(ctx, campaign.CampaignID)
	if stored.Status != models.CampaignStatusError {
		t.Errorf("Status = %q, want error", stored.Status)
	}
}

func TestScheduledCampaignIDs(t *testing.T) {
	svc, _, company := newTestCampaignService(&stubProvider{}, nil)
	ctx := context.Background()

	scheduled, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID: company.CompanyID,
		Prompts:   []string{"q"},
		Model:     "gpt-4.1",
		Scheduled: true,
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if _, err := svc.CreateCampaign(ctx, &CreateCampaignInput{
		CompanyID: company.CompanyID,
		Prompts:   []string{"q"},
		Model:     "gpt-4.1",
	}); err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}

	ids, err := svc.ScheduledCampaignIDs(ctx)
	if err != nil {
		t.Fatalf("ScheduledCampaignIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != scheduled.CampaignID {
		t.Errorf("ids = %v, want [%s]", ids, scheduled.CampaignID)
	}
}
