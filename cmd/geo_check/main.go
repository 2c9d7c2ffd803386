// cmd/geo_check/main.go
//
// geo_check runs brand-mention detection over answer text from a file or
// stdin and prints the detection report as JSON.
//
//	geo_check -brands '[{"name":"Acme","aliases":["Acme","Acme Inc"]}]' -file answer.txt
//	cat answer.txt | geo_check -brands-file brands.json -mode substring
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/geo-agent/geo-workflows/internal/config"
	"github.com/geo-agent/geo-workflows/internal/models"
	"github.com/geo-agent/geo-workflows/services"
)

func main() {
	var (
		brandsJSON = flag.String("brands", "", "tracked brands as a JSON array")
		brandsFile = flag.String("brands-file", "", "path to a JSON file with tracked brands")
		answerFile = flag.String("file", "", "answer text file (default: stdin)")
		mode       = flag.String("mode", "exact_only", "match mode: exact_only or substring")
		leadWindow = flag.Int("lead", 0, "lead window in characters (default from env)")
	)
	flag.Parse()

	brands, err := loadBrands(*brandsJSON, *brandsFile)
	if err != nil {
		fatal(err)
	}

	text, err := loadAnswer(*answerFile)
	if err != nil {
		fatal(err)
	}

	cfg := config.Load()
	detection := services.NewDetectionService(cfg)

	req := &models.DetectionRequest{
		Answers:         []models.Answer{{AnswerText: text}},
		Brands:          brands,
		MatchMode:       models.MatchMode(*mode),
		LeadWindowChars: *leadWindow,
	}

	report, err := detection.Run(context.Background(), req)
	if err != nil {
		fatal(err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func loadBrands(brandsJSON, brandsFile string) ([]models.Brand, error) {
	var data []byte
	switch {
	case brandsJSON != "":
		data = []byte(brandsJSON)
	case brandsFile != "":
		b, err := os.ReadFile(brandsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read brands file: %w", err)
		}
		data = b
	default:
		return nil, fmt.Errorf("either -brands or -brands-file is required")
	}

	var brands []models.Brand
	if err := json.Unmarshal(data, &brands); err != nil {
		return nil, fmt.Errorf("invalid brands JSON: %w", err)
	}
	return brands, nil
}

func loadAnswer(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read answer file: %w", err)
	}
	return string(b), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "geo_check: %v\n", err)
	os.Exit(1)
}
