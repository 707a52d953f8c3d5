package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/justsurfingit/lead-labeler/internal/extract"
	"github.com/justsurfingit/lead-labeler/internal/logger"
	"github.com/justsurfingit/lead-labeler/internal/models"
	"github.com/justsurfingit/lead-labeler/internal/predict"
)

// ClassifierSource resolves a model name to a ready classifier.
type ClassifierSource interface {
	Classifier(ctx context.Context, name string) (predict.Classifier, error)
}

type LeadService struct {
	DB        *gorm.DB
	Models    ClassifierSource
	Events    EventPublisher
	Extractor *extract.Extractor
}

func NewLeadService(db *gorm.DB, source ClassifierSource, events EventPublisher) *LeadService {
	if events == nil {
		events = NopPublisher{}
	}
	return &LeadService{
		DB:        db,
		Models:    source,
		Events:    events,
		Extractor: extract.New(),
	}
}

// LabelFeed extracts the fields of a raw feed and labels them.
func (s *LeadService) LabelFeed(ctx context.Context, raw, modelName string) (*models.Record, error) {
	return s.LabelFields(ctx, s.Extractor.Extract(raw), modelName)
}

// LabelFields classifies already extracted fields with the named model and
// stores the result. A classifier answer outside the label table is logged
// and stored with an empty label.
func (s *LeadService) LabelFields(ctx context.Context, f extract.Fields, modelName string) (*models.Record, error) {
	enc, err := predict.Encode(f)
	if err != nil {
		return nil, err
	}

	clf, err := s.Models.Classifier(ctx, modelName)
	if err != nil {
		return nil, err
	}

	label, err := predict.PredictLabel(ctx, enc.Vector(), clf)
	switch {
	case errors.Is(err, predict.ErrUnknownClass):
		logger.Warn("classifier returned an unknown class, storing lead unlabelled",
			"model", modelName, "error", err)
	case err != nil:
		return nil, fmt.Errorf("prediction could not be carried out: %w", err)
	}

	record := models.NewRecord(f, label, modelName)
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("record could not be saved: %w", err)
	}

	// events are best effort
	if err := s.Events.Publish(ctx, record); err != nil {
		logger.Warn("publish labeled lead failed", "record_id", record.ID, "error", err)
	}

	logger.Info("lead labeled", "record_id", record.ID, "model", modelName, "label", label)
	return record, nil
}

// ListRecords returns every stored record, oldest first.
func (s *LeadService) ListRecords(ctx context.Context) ([]models.Record, error) {
	records := make([]models.Record, 0)
	if err := s.DB.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
