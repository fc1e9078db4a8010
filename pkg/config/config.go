// Package config loads the process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Toolset names accepted in AGENT_TOOLS.
const (
	ToolsetGeneric = "generic"
	ToolsetShopify = "shopify"
)

// Prompt defaults used when the store deployment does not override them.
const (
	DefaultStoreInfo   = "Your Store"
	DefaultServiceTask = "You are a customer service representative who is helping customers order items from the store. You are courteous, helpful and concise."
)

// LLMConfig identifies the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	ModelID string
	APIKey  string
	BaseURL string
}

// ShopifyConfig carries store credentials and the prompt strings spliced
// into the routing and customer-response prompts.
type ShopifyConfig struct {
	Shop        string
	Token       string
	ShopGID     string
	StoreInfo   string
	ServiceTask string
}

// Configured reports whether the store credentials are present.
func (c ShopifyConfig) Configured() bool {
	return c.Shop != "" && c.Token != ""
}

// Config is the full process configuration.
type Config struct {
	LLM       LLMConfig
	RedisHost string
	HTTPPort  string

	// Toolset selects which tools the agent is given: ToolsetGeneric or
	// ToolsetShopify.
	Toolset string

	Shopify ShopifyConfig

	// ObservabilityLibrary names the tracing integration requested by the
	// deployment. No tracing backend is wired; the value is recorded at
	// startup so operators can see what was asked for.
	ObservabilityLibrary string
}

// LoadFromEnv loads configuration from environment variables.
// LLM_MODEL_ID, LLM_API_KEY and LLM_BASE_URL are required; everything
// else has a default.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		LLM: LLMConfig{
			ModelID: os.Getenv("LLM_MODEL_ID"),
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
		},
		RedisHost: getEnvOrDefault("REDIS_HOST", "localhost"),
		HTTPPort:  getEnvOrDefault("HTTP_PORT", "8003"),
		Toolset:   getEnvOrDefault("AGENT_TOOLS", ToolsetShopify),
		Shopify: ShopifyConfig{
			Shop:        os.Getenv("SHOPIFY_SHOP"),
			Token:       os.Getenv("SHOPIFY_API_TOKEN"),
			ShopGID:     os.Getenv("SHOPIFY_SHOP_GID"),
			StoreInfo:   getEnvOrDefault("SHOPIFY_STORE_INFO", DefaultStoreInfo),
			ServiceTask: getEnvOrDefault("SHOPIFY_CUSTOMER_SERVICE_TASK", DefaultServiceTask),
		},
		ObservabilityLibrary: strings.ToLower(os.Getenv("LLM_OBSERVABILITY_LIBRARY")),
	}

	var missing []string
	if cfg.LLM.ModelID == "" {
		missing = append(missing, "LLM_MODEL_ID")
	}
	if cfg.LLM.APIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if cfg.LLM.BaseURL == "" {
		missing = append(missing, "LLM_BASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch cfg.Toolset {
	case ToolsetGeneric, ToolsetShopify:
	default:
		return Config{}, fmt.Errorf("invalid AGENT_TOOLS %q: must be %q or %q", cfg.Toolset, ToolsetGeneric, ToolsetShopify)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
