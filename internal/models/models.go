// internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location represents a geographic location for running queries
type Location struct {
	Country string  `json:"country"`          // Required
	City    *string `json:"city,omitempty"`   // Optional
	Region  *string `json:"region,omitempty"` // Optional (state/region)
}

// MatchMode controls how brand aliases are matched against answer text.
type MatchMode string

const (
	// MatchModeExactOnly requires aliases to match on word boundaries.
	MatchModeExactOnly MatchMode = "exact_only"
	// MatchModeSubstring counts any contiguous occurrence, mid-word included.
	MatchModeSubstring MatchMode = "substring"
)

// ParseMatchMode validates a caller-supplied match mode string. The empty
// string defaults to exact matching, which is what campaign stats use.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchModeExactOnly, MatchModeSubstring:
		return MatchMode(s), nil
	case "":
		return MatchModeExactOnly, nil
	}
	return "", fmt.Errorf("unknown match mode: %q", s)
}

// Brand is a tracked brand with its alias strings. Aliases are compared
// case-insensitively after normalization; callers include the brand name
// itself in the alias list.
type Brand struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Match is a single alias occurrence. Offsets are rune offsets into the
// original (non-normalized) answer text, start inclusive, end exclusive.
type Match struct {
	BrandName   string `json:"brand_name"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// BrandSummary is one brand's row in an AnswerSummary. A brand is only
// present when Total > 0, so FirstIndex is always a real offset.
type BrandSummary struct {
	Total      int `json:"total"`
	FirstIndex int `json:"first_index"`
}

// AnswerSummary maps brand name to per-answer mention stats. Brands with
// zero mentions are absent; callers treat a missing key as zero occurrences.
type AnswerSummary map[string]BrandSummary

// BrandMetrics are campaign-level visibility metrics for one brand.
type BrandMetrics struct {
	MentionRate        float64 `json:"mention_rate"`
	LeadMentionRate    float64 `json:"lead_mention_rate"`
	TotalMentions      int     `json:"total_mentions"`
	PromptsWithMention int     `json:"prompts_with_mention"`
	AvgFirstIndex      float64 `json:"avg_first_index"`
}

// CampaignMetrics aggregates brand metrics across all answers of a campaign.
// SOV is omitted when there were no mentions at all across the tracked set.
type CampaignMetrics struct {
	NPrompts int                     `json:"n_prompts"`
	ByBrand  map[string]BrandMetrics `json:"by_brand"`
	SOV      map[string]float64      `json:"sov,omitempty"`
}

// Answer pairs a prompt with the answer text an LLM returned for it.
type Answer struct {
	PromptText string `json:"prompt_text"`
	AnswerText string `json:"answer_text"`
}

// DetectionRequest is the single request contract the detection core exposes.
type DetectionRequest struct {
	Answers         []Answer  `json:"answers"`
	Brands          []Brand   `json:"brands"`
	MatchMode       MatchMode `json:"match_mode"`
	LeadWindowChars int       `json:"lead_window_chars,omitempty"`
	// MaxConcurrency bounds the per-answer worker pool; set by the caller
	// driving the request, defaulted from config.
	MaxConcurrency int `json:"-"`
}

// PromptResult is one answer's detection detail, in input order.
type PromptResult struct {
	Prompt     string        `json:"prompt"`
	AnswerText string        `json:"answer_text"`
	Summary    AnswerSummary `json:"summary"`
}

// DetectionReport is the detection core's response payload.
type DetectionReport struct {
	PerPrompt []PromptResult  `json:"per_prompt"`
	Metrics   CampaignMetrics `json:"metrics"`
}

// StringList is a []string stored as JSONB.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// HitCounts is a map of brand name to mention count stored as JSONB.
type HitCounts map[string]int

func (h HitCounts) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	b, err := json.Marshal(h)
	return string(b), err
}

func (h *HitCounts) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported JSONB source type %T", src)
}

// Campaign lifecycle statuses
const (
	CampaignStatusQueued  = "queued"
	CampaignStatusRunning = "running"
	CampaignStatusDone    = "done"
	CampaignStatusError   = "error"
)

// Company is a tracked organization: the target brand, its alias variants,
// and the competitor names it is measured against.
type Company struct {
	CompanyID   uuid.UUID  `db:"company_id" json:"company_id"`
	Name        string     `db:"name" json:"name"`
	Variants    StringList `db:"variants" json:"variants"`
	Competitors StringList `db:"competitors" json:"competitors"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Campaign is a batch of prompts run against one model for one company.
type Campaign struct {
	CampaignID      uuid.UUID `db:"campaign_id" json:"campaign_id"`
	CompanyID       uuid.UUID `db:"company_id" json:"company_id"`
	Model           string    `db:"model" json:"model"`
	MatchMode       MatchMode `db:"match_mode" json:"match_mode"`
	LeadWindowChars int       `db:"lead_window_chars" json:"lead_window_chars"`
	RunsPerPrompt   int       `db:"runs_per_prompt" json:"runs_per_prompt"`
	Status          string    `db:"status" json:"status"`
	TotalRuns       int       `db:"total_runs" json:"total_runs"`
	CompletedRuns   int       `db:"completed_runs" json:"completed_runs"`
	Visibility      float64   `db:"visibility" json:"visibility"`
	Scheduled       bool      `db:"scheduled" json:"scheduled"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CampaignPrompt is one prompt of a campaign, kept in input order.
type CampaignPrompt struct {
	CampaignPromptID uuid.UUID `db:"campaign_prompt_id" json:"campaign_prompt_id"`
	CampaignID       uuid.UUID `db:"campaign_id" json:"campaign_id"`
	PromptText       string    `db:"prompt_text" json:"prompt_text"`
	OrderIndex       int       `db:"order_index" json:"order_index"`
}

// Run is a single prompt execution with its detection results. FirstPos is
// -1 when the target brand never appeared.
type Run struct {
	RunID            uuid.UUID  `db:"run_id" json:"run_id"`
	CampaignID       uuid.UUID  `db:"campaign_id" json:"campaign_id"`
	CampaignPromptID uuid.UUID  `db:"campaign_prompt_id" json:"campaign_prompt_id"`
	RunIndex         int        `db:"run_index" json:"run_index"`
	Model            string     `db:"model" json:"model"`
	ResponseText     string     `db:"response_text" json:"response_text"`
	AppearAnswer     bool       `db:"appear_answer" json:"appear_answer"`
	AppearLead       bool       `db:"appear_lead" json:"appear_lead"`
	FirstPos         int        `db:"first_pos" json:"first_pos"`
	BrandHits        int        `db:"brand_hits" json:"brand_hits"`
	CompHits         HitCounts  `db:"comp_hits" json:"comp_hits"`
	Sources          StringList `db:"sources" json:"sources"`
	Cost             float64    `db:"cost" json:"cost"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
