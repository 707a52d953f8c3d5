// Package predict encodes extracted lead fields into the classifier's feature
// vector and maps the classifier's answer back to a label.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/lead-labeler/internal/extract"
)

var (
	ErrUnknownCategory = errors.New("unrecognized category")
	ErrUnknownCountry  = errors.New("unrecognized country")
	ErrUnknownClass    = errors.New("unrecognized class index")
)

// VectorSize is the width the models were trained on.
const VectorSize = 5

// FeatureVector is ordered (budget, hourly_from, hourly_to, country_code,
// category_code). Changing the order or width requires retraining.
type FeatureVector [VectorSize]float64

// Feature positions.
const (
	FeatureBudget = iota
	FeatureHourlyFrom
	FeatureHourlyTo
	FeatureCountry
	FeatureCategory
)

// EncodedLead is a lead with its categorical fields replaced by codes and
// its missing prices replaced by zero.
type EncodedLead struct {
	Budget       float64
	HourlyFrom   float64
	HourlyTo     float64
	CountryCode  int
	CategoryCode int
}

// Vector lays the encoded lead out in model order.
func (e EncodedLead) Vector() FeatureVector {
	return FeatureVector{
		FeatureBudget:     e.Budget,
		FeatureHourlyFrom: e.HourlyFrom,
		FeatureHourlyTo:   e.HourlyTo,
		FeatureCountry:    float64(e.CountryCode),
		FeatureCategory:   float64(e.CategoryCode),
	}
}

// Encode maps category and country to their codes. Empty values fall back to
// Full Stack Development and United States; values missing from the tables
// are an error since no sensible default exists for them.
func Encode(f extract.Fields) (EncodedLead, error) {
	category := f.Category
	if category == "" {
		category = defaultCategory
	}
	categoryCode, ok := categoryCodes[category]
	if !ok {
		return EncodedLead{}, fmt.Errorf("encoding failed: %w %q", ErrUnknownCategory, category)
	}

	country := f.Country
	if country == "" {
		country = defaultCountry
	}
	countryCode, ok := countryCodes[country]
	if !ok {
		return EncodedLead{}, fmt.Errorf("encoding failed: %w %q", ErrUnknownCountry, country)
	}

	return EncodedLead{
		Budget:       f.Budget.OrZero(),
		HourlyFrom:   f.HourlyFrom.OrZero(),
		HourlyTo:     f.HourlyTo.OrZero(),
		CountryCode:  countryCode,
		CategoryCode: categoryCode,
	}, nil
}

// Classifier is a trained model answering with a class index.
type Classifier interface {
	Predict(ctx context.Context, v FeatureVector) (int, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, v FeatureVector) (int, error)

func (f ClassifierFunc) Predict(ctx context.Context, v FeatureVector) (int, error) {
	return f(ctx, v)
}

// PredictLabel runs the classifier and names its answer. An index outside the
// label table returns an empty label together with ErrUnknownClass so the
// caller can decide whether to keep the lead.
func PredictLabel(ctx context.Context, v FeatureVector, c Classifier) (string, error) {
	idx, err := c.Predict(ctx, v)
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	label, ok := classLabels[idx]
	if !ok {
		return "", fmt.Errorf("%w %d", ErrUnknownClass, idx)
	}
	return label, nil
}
