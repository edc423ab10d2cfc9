package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"merocare/internal/models"
	"merocare/internal/repository"
)

// defaultHealthTips seeds an empty table when no tips file is configured
var defaultHealthTips = []models.HealthTip{
	{Title: "Stay hydrated", Content: "Drink at least eight glasses of water a day, more in hot weather or after exercise."},
	{Title: "Wash your hands", Content: "Wash with soap for twenty seconds before eating and after using the toilet."},
	{Title: "Sleep well", Content: "Adults need seven to nine hours of sleep each night."},
	{Title: "Move every day", Content: "Aim for thirty minutes of moderate activity such as brisk walking on most days."},
	{Title: "Eat your vegetables", Content: "Fill half your plate with vegetables and fruit."},
	{Title: "Know your numbers", Content: "Check your blood pressure and blood sugar at least once a year."},
}

// tipsFile is the YAML layout of a health tips file
type tipsFile struct {
	Tips []models.HealthTip `yaml:"tips"`
}

// HealthTipService serves general health advice
type HealthTipService struct {
	tipRepo *repository.HealthTipRepository
}

// NewHealthTipService creates a new health tip service
func NewHealthTipService(tipRepo *repository.HealthTipRepository) *HealthTipService {
	return &HealthTipService{tipRepo: tipRepo}
}

// List returns every tip
func (s *HealthTipService) List(ctx context.Context) ([]models.HealthTip, error) {
	return s.tipRepo.ListTips(ctx)
}

// Seed fills an empty tips table from the YAML file at path, or from the
// built-in set when path is empty. It returns how many tips were added.
func (s *HealthTipService) Seed(ctx context.Context, path string) (int, error) {
	count, err := s.tipRepo.CountTips(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tips := defaultHealthTips
	if path != "" {
		tips, err = LoadHealthTips(path)
		if err != nil {
			return 0, err
		}
	}

	added := 0
	for _, tip := range tips {
		title, content := strings.TrimSpace(tip.Title), strings.TrimSpace(tip.Content)
		if title == "" || content == "" {
			continue
		}
		if _, err := s.tipRepo.CreateTip(ctx, title, content); err != nil {
			return added, err
		}
		added++
	}

	slog.Info("Seeded health tips", "count", added, "source", seedSource(path))
	return added, nil
}

// LoadHealthTips reads tips from a YAML file of the form
// "tips: [{title: ..., content: ...}]"
func LoadHealthTips(path string) ([]models.HealthTip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read health tips file: %w", err)
	}

	var file tipsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse health tips file: %w", err)
	}
	return file.Tips, nil
}

func seedSource(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
