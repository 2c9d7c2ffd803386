package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
)

// SampleConfig returns a test configuration
func SampleConfig() *config.Config {
	return &config.Config{
		OpenAIAPIKey:     "test-openai-key",
		AnthropicAPIKey:  "test-anthropic-key",
		PerplexityAPIKey: "test-pplx-key",
		OllamaHost:       "http://localhost:11434",
		ExportDir:        "testdata/exports",
		Detection: config.DetectionConfig{
			LeadWindowChars:   300,
			MaxConcurrentRuns: 4,
		},
		Redis: config.RedisConfig{
			Addr:            "localhost:6379",
			CacheTTLSeconds: 60,
		},
	}
}

// SampleBrands returns a tracked brand set with aliases
func SampleBrands() []models.Brand {
	return []models.Brand{
		{Name: "Seven Seventy", Aliases: []string{"Seven Seventy", "770"}},
		{Name: "Pizza Palace", Aliases: []string{"Pizza Palace"}},
	}
}

// SampleCompany returns a tracked company with variants and competitors
func SampleCompany() *models.Company {
	return &models.Company{
		CompanyID:   uuid.New(),
		Name:        "Seven Seventy",
		Variants:    models.StringList{"770"},
		Competitors: models.StringList{"Pizza Palace", "Slice House"},
		CreatedAt:   time.Now().UTC(),
	}
}

// SampleQueries returns test prompt texts
func SampleQueries() []string {
	return []string{
		"What are the best pizza places near me?",
		"Where should I order pizza tonight?",
		"Which pizzeria has the best deep dish?",
	}
}

// SampleLocation returns a test location
func SampleLocation() *models.Location {
	region := "Illinois"
	city := "Chicago"
	return &models.Location{
		Country: "US",
		Region:  &region,
		City:    &city,
	}
}
