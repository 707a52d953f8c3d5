package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/justsurfingit/lead-labeler/internal/classifier"
	"github.com/justsurfingit/lead-labeler/internal/predict"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

const stumpJSON = `{
  "kind": "forest",
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 1000, "left": 1, "right": 2},
      {"left": -1, "right": -1, "value": [2, 8]},
      {"left": -1, "right": -1, "value": [9, 1]}
    ]}
  ]
}`

func newModelService(t *testing.T) *services.ModelService {
	t.Helper()
	return services.NewModelService(newTestDB(t), filepath.Join(t.TempDir(), "models"), nil)
}

// ── ModelName ──────────────────────────────────────────────────────────────

func TestModelName(t *testing.T) {
	cases := map[string]string{
		"rf_clf.json":       "rf_clf",
		"rf_clf_v0.1.json":  "rf_clf_v0",
		"dir/logreg.yaml":   "logreg",
		"noext":             "noext",
		".hidden.json":      "",
		"Forest.Model.YAML": "Forest",
	}
	for in, want := range cases {
		if got := services.ModelName(in); got != want {
			t.Errorf("ModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Upload ─────────────────────────────────────────────────────────────────

func TestModelService_UploadAndClassify(t *testing.T) {
	svc := newModelService(t)
	ctx := context.Background()

	m, err := svc.Upload(ctx, "rf_clf.json", []byte(stumpJSON))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if m.Name != "rf_clf" {
		t.Errorf("Name = %q, want rf_clf", m.Name)
	}
	if filepath.Ext(m.File) != ".json" || filepath.Dir(m.File) != svc.Dir {
		t.Errorf("File = %q, want a .json file under %s", m.File, svc.Dir)
	}
	if b, err := os.ReadFile(m.File); err != nil || string(b) != stumpJSON {
		t.Errorf("stored file differs from upload (err %v)", err)
	}

	clf, err := svc.Classifier(ctx, "rf_clf")
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	got, err := clf.Predict(ctx, predict.FeatureVector{5000, 0, 0, 84, 25})
	if err != nil || got != predict.ClassApplied {
		t.Errorf("Predict = %d, %v; want Applied", got, err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "rf_clf" {
		t.Errorf("List = %+v, %v", list, err)
	}
}

func TestModelService_UploadDuplicate(t *testing.T) {
	svc := newModelService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "rf_clf.json", []byte(stumpJSON)); err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	_, err := svc.Upload(ctx, "rf_clf.v2.json", []byte(stumpJSON))
	if !errors.Is(err, services.ErrModelExists) {
		t.Fatalf("expected ErrModelExists, got %v", err)
	}

	entries, _ := os.ReadDir(svc.Dir)
	if len(entries) != 1 {
		t.Errorf("models dir holds %d files, want 1", len(entries))
	}
}

func TestModelService_UploadInvalid(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  string
		inner    error
	}{
		{"pickle", "rf.pkl", "\x80\x04binary", classifier.ErrUnsupportedFormat},
		{"broken json", "rf.json", "{not json", classifier.ErrInvalidArtifact},
		{"unknown kind", "rf.json", `{"kind":"svm"}`, classifier.ErrInvalidArtifact},
		{"short coef", "lr.yaml", "kind: logistic\ncoef: [1, 2]\n", classifier.ErrInvalidArtifact},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newModelService(t)
			_, err := svc.Upload(context.Background(), c.filename, []byte(c.content))
			if !errors.Is(err, services.ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
			if !errors.Is(err, c.inner) {
				t.Errorf("expected wrapped %v, got %v", c.inner, err)
			}
			if list, _ := svc.List(context.Background()); len(list) != 0 {
				t.Errorf("invalid model was registered: %+v", list)
			}
		})
	}
}

// ── Delete ─────────────────────────────────────────────────────────────────

func TestModelService_Delete(t *testing.T) {
	svc := newModelService(t)
	ctx := context.Background()

	m, err := svc.Upload(ctx, "rf_clf.json", []byte(stumpJSON))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Delete(ctx, "rf_clf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(m.File); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("model file still present: %v", err)
	}
	if err := svc.Delete(ctx, "rf_clf"); !errors.Is(err, services.ErrModelNotFound) {
		t.Errorf("second Delete: expected ErrModelNotFound, got %v", err)
	}
	if _, err := svc.Classifier(ctx, "rf_clf"); !errors.Is(err, services.ErrModelNotFound) {
		t.Errorf("Classifier after delete: expected ErrModelNotFound, got %v", err)
	}

	// the name is free again
	if _, err := svc.Upload(ctx, "rf_clf.json", []byte(stumpJSON)); err != nil {
		t.Errorf("re-upload after delete: %v", err)
	}
}

func TestModelService_DeleteMissingFile(t *testing.T) {
	svc := newModelService(t)
	ctx := context.Background()

	m, err := svc.Upload(ctx, "rf_clf.json", []byte(stumpJSON))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := os.Remove(m.File); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Delete(ctx, "rf_clf"); err != nil {
		t.Errorf("Delete with missing file: %v", err)
	}
	if list, _ := svc.List(ctx); len(list) != 0 {
		t.Errorf("row should be gone, got %+v", list)
	}
}
