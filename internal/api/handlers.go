// internal/api/handlers.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inngest/inngestgo"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/internal/repository"
	"github.com/geo-agent/geo-workflows/services"
)

// Handlers carries the service dependencies for the HTTP surface.
type Handlers struct {
	cfg         *config.Config
	repos       *repository.Manager
	detection   services.DetectionService
	campaigns   services.CampaignService
	prompts     services.PromptService
	exports     services.ExportService
	costService services.CostService
	cache       services.AnswerCache
	inngest     inngestgo.Client
}

func NewHandlers(
	cfg *config.Config,
	repos *repository.Manager,
	detection services.DetectionService,
	campaigns services.CampaignService,
	prompts services.PromptService,
	exports services.ExportService,
	costService services.CostService,
	cache services.AnswerCache,
	inngestClient inngestgo.Client,
) *Handlers {
	return &Handlers{
		cfg:         cfg,
		repos:       repos,
		detection:   detection,
		campaigns:   campaigns,
		prompts:     prompts,
		exports:     exports,
		costService: costService,
		cache:       cache,
		inngest:     inngestClient,
	}
}

// Detect runs mention detection over caller-supplied answers without any
// provider calls.
func (h *Handlers) Detect(c *gin.Context) {
	var req models.DetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	report, err := h.detection.Run(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// AskDetectRequest asks one question to a model and detects brand mentions in
// the answer.
type AskDetectRequest struct {
	Question        string         `json:"question" binding:"required"`
	Model           string         `json:"model" binding:"required"`
	Brands          []models.Brand `json:"brands" binding:"required"`
	MatchMode       string         `json:"match_mode"`
	LeadWindowChars int            `json:"lead_window_chars"`
	WebSearch       bool           `json:"websearch"`
}

type askDetectResponse struct {
	Question string                 `json:"question"`
	Answer   string                 `json:"answer"`
	Summary  models.AnswerSummary   `json:"summary"`
	Metrics  models.CampaignMetrics `json:"metrics"`
	Cost     float64                `json:"cost"`
	Sources  []string               `json:"sources,omitempty"`
}

func (h *Handlers) AskDetect(c *gin.Context) {
	var req AskDetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	ctx := c.Request.Context()
	provider := services.NewProviderForModel(h.cfg, req.Model, h.costService)

	resp, err := h.askCached(c, provider, req.Model, req.Question, req.WebSearch)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("provider call failed: %v", err)})
		return
	}

	detReq := &models.DetectionRequest{
		Answers:         []models.Answer{{PromptText: req.Question, AnswerText: resp.Response}},
		Brands:          req.Brands,
		MatchMode:       models.MatchMode(req.MatchMode),
		LeadWindowChars: req.LeadWindowChars,
	}
	report, err := h.detection.Run(ctx, detReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, askDetectResponse{
		Question: req.Question,
		Answer:   resp.Response,
		Summary:  report.PerPrompt[0].Summary,
		Metrics:  report.Metrics,
		Cost:     resp.Cost,
		Sources:  resp.Citations,
	})
}

// AskDetectBatchRequest runs a list of questions against one model and
// aggregates mention metrics across the answers.
type AskDetectBatchRequest struct {
	Questions       []string       `json:"questions" binding:"required"`
	Model           string         `json:"model" binding:"required"`
	Brands          []models.Brand `json:"brands" binding:"required"`
	MatchMode       string         `json:"match_mode"`
	LeadWindowChars int            `json:"lead_window_chars"`
	WebSearch       bool           `json:"websearch"`
}

func (h *Handlers) AskDetectBatch(c *gin.Context) {
	var req AskDetectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if len(req.Questions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questions must not be empty"})
		return
	}

	ctx := c.Request.Context()
	provider := services.NewProviderForModel(h.cfg, req.Model, h.costService)

	answers := make([]models.Answer, 0, len(req.Questions))
	var totalCost float64
	for _, q := range req.Questions {
		resp, err := h.askCached(c, provider, req.Model, q, req.WebSearch)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("provider call failed for %q: %v", q, err)})
			return
		}
		answers = append(answers, models.Answer{PromptText: q, AnswerText: resp.Response})
		totalCost += resp.Cost
	}

	detReq := &models.DetectionRequest{
		Answers:         answers,
		Brands:          req.Brands,
		MatchMode:       models.MatchMode(req.MatchMode),
		LeadWindowChars: req.LeadWindowChars,
	}
	report, err := h.detection.Run(ctx, detReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":     report,
		"total_cost": totalCost,
	})
}

func (h *Handlers) askCached(c *gin.Context, provider services.AIProvider, model, question string, websearch bool) (*services.AIResponse, error) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, provider.GetProviderName(), model, question); err == nil && cached != nil {
			return cached, nil
		}
	}

	resp, err := provider.RunQuestion(ctx, question, websearch, nil)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, provider.GetProviderName(), model, question, resp); err != nil {
			fmt.Printf("[Handlers.askCached] Cache write failed: %v\n", err)
		}
	}
	return resp, nil
}

// GeneratePromptsRequest generates campaign prompts for a business type.
type GeneratePromptsRequest struct {
	BusinessType string `json:"business_type" binding:"required"`
	Location     string `json:"location"`
	Count        int    `json:"count"`
}

func (h *Handlers) GeneratePrompts(c *gin.Context) {
	var req GeneratePromptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	prompts, err := h.prompts.GeneratePrompts(c.Request.Context(), req.BusinessType, req.Location, req.Count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// CreateCompanyRequest registers a tracked company.
type CreateCompanyRequest struct {
	Name        string   `json:"name" binding:"required"`
	Variants    []string `json:"variants"`
	Competitors []string `json:"competitors"`
}

func (h *Handlers) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	company := &models.Company{
		CompanyID:   uuid.New(),
		Name:        req.Name,
		Variants:    models.StringList(req.Variants),
		Competitors: models.StringList(req.Competitors),
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.repos.Companies.Create(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Handlers) GetCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	company, err := h.repos.Companies.GetByID(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handlers) CreateCampaign(c *gin.Context) {
	var input services.CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	campaign, err := h.campaigns.CreateCampaign(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *Handlers) GetCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	campaign, err := h.campaigns.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// StartCampaign queues the campaign's prompt matrix for background execution.
func (h *Handlers) StartCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	if _, err := h.campaigns.GetCampaign(c.Request.Context(), campaignID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	_, err = h.inngest.Send(c.Request.Context(), inngestgo.Event{
		Name: "campaign.process",
		Data: map[string]any{
			"campaign_id": campaignID.String(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to queue campaign: %v", err)})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"campaign_id": campaignID,
		"status":      "queued",
	})
}

func (h *Handlers) GetCampaignMetrics(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	metrics, err := h.campaigns.CampaignMetrics(c.Request.Context(), campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// ExportCampaign writes the campaign's runs to CSV and streams the file back.
func (h *Handlers) ExportCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	path, err := h.exports.ExportCampaignCSV(c.Request.Context(), campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, "campaign_export.csv")
}
