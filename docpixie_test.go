package docpixie

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/docpixie/docpixie/config"
	"github.com/docpixie/docpixie/errors"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Type = config.StorageMemory
	cfg.Provider.APIKey = "test-key"
	return cfg
}

func TestNewWithDefaults(t *testing.T) {
	cfg := testConfig()
	p, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Close(context.Background())

	infos, err := p.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("fresh store lists %d documents", len(infos))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.Type = "carrier-pigeon"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() accepted an unknown provider type")
	}

	cfg = testConfig()
	cfg.Agent.MaxIterations = 0
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New() accepted a zero iteration budget")
	}
}

func TestAddDocumentImagesValidation(t *testing.T) {
	p, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(context.Background())

	ctx := context.Background()
	if _, err := p.AddDocumentImages(ctx, "", []string{"/tmp/p.png"}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("empty name error = %v, want ErrInvalidInput", err)
	}
	if _, err := p.AddDocumentImages(ctx, "doc", nil); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("no pages error = %v, want ErrInvalidInput", err)
	}
	if _, err := p.AddDocumentImages(ctx, "doc", []string{"/no/such/page.png"}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("missing image error = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteUnknownDocument(t *testing.T) {
	p, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(context.Background())

	if err := p.DeleteDocument(context.Background(), "missing"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
