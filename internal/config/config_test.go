package config

import "testing"

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Index: IndexConfig{Metric: "cosine"},
		Embedding: EmbeddingConfig{
			APIKey: "test-key",
			Budget: BudgetConfig{
				DailyTokenLimit: 1000000,
				Action:          "invalid_action",
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := Config{
				HTTP: HTTPConfig{Port: 8080},
				Database: DatabaseConfig{
					Addrs: []string{"localhost:6379"},
				},
				Index: IndexConfig{Metric: "cosine"},
				Embedding: EmbeddingConfig{
					APIKey: "test-key",
					Budget: BudgetConfig{
						Action: action,
					},
				},
			}

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_InvalidMetric(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Index: IndexConfig{Metric: "manhattan"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestValidate_NegativeRetries(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Index:      IndexConfig{Metric: "cosine"},
		Generation: GenerationConfig{MaxRetries: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative max_retries")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Model != "all-MiniLM-L6-v2" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if !cfg.Embedding.Normalized() {
		t.Error("expected normalization on by default")
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("expected default generation model, got %q", cfg.Generation.Model)
	}
	if cfg.Generation.Temperature != 0.3 {
		t.Errorf("expected Temperature=0.3, got %f", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxConcurrent != 4 {
		t.Errorf("expected MaxConcurrent=4, got %d", cfg.Generation.MaxConcurrent)
	}
	if cfg.Index.Collection != "ml_papers" {
		t.Errorf("expected Collection='ml_papers', got %q", cfg.Index.Collection)
	}
	if cfg.Index.Metric != "cosine" {
		t.Errorf("expected Metric='cosine', got %q", cfg.Index.Metric)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	off := false
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15},
		Embedding: EmbeddingConfig{Model: "custom-model", Dimensions: 1024, Normalize: &off},
		Index:     IndexConfig{Collection: "my_papers", Metric: "dot"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Model != "custom-model" || cfg.Embedding.Dimensions != 1024 {
		t.Errorf("expected embedding config preserved, got %+v", cfg.Embedding)
	}
	if cfg.Embedding.Normalized() {
		t.Error("expected normalization off when explicitly disabled")
	}
	if cfg.Index.Collection != "my_papers" || cfg.Index.Metric != "dot" {
		t.Errorf("expected index config preserved, got %+v", cfg.Index)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PAPERDEX_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${PAPERDEX_TEST_KEY}\nmodel: ${PAPERDEX_TEST_MODEL:-gpt-4o-mini}\n"))
	got := string(out)
	if got != "api_key: secret\nmodel: gpt-4o-mini\n" {
		t.Errorf("unexpected expansion: %q", got)
	}
}
