package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/justsurfingit/lead-labeler/internal/classifier"
	"github.com/justsurfingit/lead-labeler/internal/logger"
	"github.com/justsurfingit/lead-labeler/internal/models"
	"github.com/justsurfingit/lead-labeler/internal/predict"
)

// ModelService stores uploaded classifier artifacts on disk and their names
// in the database. Concurrent uploads or deletes of one name are last writer
// wins.
type ModelService struct {
	DB     *gorm.DB
	Dir    string
	Loader *classifier.Loader
}

func NewModelService(db *gorm.DB, dir string, loader *classifier.Loader) *ModelService {
	if loader == nil {
		loader = &classifier.Loader{}
	}
	return &ModelService{DB: db, Dir: dir, Loader: loader}
}

// ModelName is the part of an uploaded file name before its first dot:
// "rf_clf_v0.1.json" is stored as "rf_clf_v0".
func ModelName(filename string) string {
	base := filepath.Base(filename)
	name, _, _ := strings.Cut(base, ".")
	return strings.TrimSpace(name)
}

// Upload validates content as a classifier artifact and stores it under a
// random file name.
func (s *ModelService) Upload(ctx context.Context, filename string, content []byte) (*models.MLModel, error) {
	name := ModelName(filename)
	if name == "" {
		return nil, fmt.Errorf("%w: empty model name in %q", ErrInvalidModel, filename)
	}
	ext := strings.ToLower(filepath.Ext(filename))

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.MLModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrModelExists, name)
	}

	if _, err := s.Loader.Load(ext, content); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create models dir: %w", err)
	}
	path := filepath.Join(s.Dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("save model file: %w", err)
	}

	m := &models.MLModel{Name: name, File: path}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("save model row: %w", err)
	}

	logger.Info("model uploaded", "model", name, "file", path)
	return m, nil
}

// Delete removes the model's row and its file.
func (s *ModelService) Delete(ctx context.Context, name string) error {
	m, err := s.find(ctx, name)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(m).Error; err != nil {
		return fmt.Errorf("delete model row: %w", err)
	}

	if err := os.Remove(m.File); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("model file already gone", "model", name, "file", m.File)
			return nil
		}
		return fmt.Errorf("model file could not be deleted from server: %w", err)
	}

	logger.Info("model deleted", "model", name)
	return nil
}

// Classifier loads the named model from disk.
func (s *ModelService) Classifier(ctx context.Context, name string) (predict.Classifier, error) {
	m, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	clf, err := s.Loader.LoadFile(m.File)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}
	return clf, nil
}

// List returns the uploaded models by name.
func (s *ModelService) List(ctx context.Context) ([]models.MLModel, error) {
	list := make([]models.MLModel, 0)
	if err := s.DB.WithContext(ctx).Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ModelService) find(ctx context.Context, name string) (*models.MLModel, error) {
	var m models.MLModel
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
