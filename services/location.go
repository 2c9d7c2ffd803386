// services/location.go
package services

import (
	"fmt"
	"strings"

	"github.com/geo-agent/geo-workflows/internal/models"
)

// buildLocationPrompt adds location context to a question so providers answer
// with regionally relevant information.
func buildLocationPrompt(query string, location *models.Location) string {
	if location == nil {
		return query
	}

	return fmt.Sprintf("Answer the following question with specific information relevant to %s:\n\n%s",
		formatLocation(location), query)
}

func formatLocation(location *models.Location) string {
	if location == nil {
		return "the United States"
	}

	parts := []string{}
	if location.City != nil && *location.City != "" {
		parts = append(parts, *location.City)
	}
	if location.Region != nil && *location.Region != "" {
		parts = append(parts, *location.Region)
	}
	if location.Country != "" {
		parts = append(parts, location.Country)
	}

	if len(parts) == 0 {
		return "the location"
	}

	return strings.Join(parts, ", ")
}
