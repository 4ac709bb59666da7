package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort           = "8080"
	defaultNamespace      = "brand_docs"
	defaultTopK           = 3
	defaultRemoteTimeout  = 30 * time.Second
	defaultVectorBackend  = "pinecone"
	defaultAIProvider     = "azure"
	defaultVertexLocation = "us-central1"
)

// PineconeSettings configures the remote vector index client.
type PineconeSettings struct {
	APIKey  string
	BaseURL string
	TopK    int
}

// AzureOpenAISettings configures chat completions and embeddings.
type AzureOpenAISettings struct {
	APIKey          string
	Endpoint        string
	APIVersion      string
	ChatDeployment  string
	EmbedDeployment string
}

// VertexSettings configures the alternative Gemini completer.
type VertexSettings struct {
	ProjectID string
	Location  string
	Model     string
}

// Config carries every process-wide setting. It is loaded once in main and
// passed into constructors; nothing reads the environment after startup.
type Config struct {
	Port string

	MongoURI  string
	MongoDB   string
	RedisAddr string // optional; user-lookup cache is skipped when empty

	// PostgresURI is required only when VectorBackend is "pgvector".
	PostgresURI string

	JWTSecret string

	// VectorBackend selects the retrieval index: "pinecone" or "pgvector".
	VectorBackend string
	Pinecone      PineconeSettings

	// AIProvider selects the completion model: "azure" or "vertex".
	// Embeddings always come from Azure OpenAI.
	AIProvider string
	Azure      AzureOpenAISettings
	Vertex     VertexSettings

	// Namespace is the vector-index partition holding the brand corpus.
	Namespace string

	// RemoteTimeout bounds every outbound AI / vector-index HTTP call.
	RemoteTimeout time.Duration
}

// Load reads configuration from the environment and validates that every
// setting needed by the selected backends is present.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          envOr("PORT", defaultPort),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       envOr("MONGO_DB", "brandmate"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		PostgresURI:   os.Getenv("POSTGRES_URI"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		VectorBackend: envOr("VECTOR_BACKEND", defaultVectorBackend),
		AIProvider:    envOr("AI_PROVIDER", defaultAIProvider),
		Namespace:     envOr("VECTOR_NAMESPACE", defaultNamespace),
		RemoteTimeout: defaultRemoteTimeout,
		Pinecone: PineconeSettings{
			APIKey:  os.Getenv("PINECONE_API_KEY"),
			BaseURL: os.Getenv("PINECONE_URL"),
			TopK:    defaultTopK,
		},
		Azure: AzureOpenAISettings{
			APIKey:          os.Getenv("AZURE_OPENAI_API_KEY"),
			Endpoint:        os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIVersion:      os.Getenv("OPENAI_API_VERSION"),
			ChatDeployment:  os.Getenv("AZURE_MODEL_NAME"),
			EmbedDeployment: envOr("AZURE_OPENAI_EMBEDDING_MODEL", "embedding"),
		},
		Vertex: VertexSettings{
			ProjectID: os.Getenv("VERTEX_PROJECT_ID"),
			Location:  envOr("VERTEX_LOCATION", defaultVertexLocation),
			Model:     os.Getenv("VERTEX_MODEL_NAME"),
		},
	}

	if v := os.Getenv("VECTOR_TOP_K"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("VECTOR_TOP_K must be a positive integer, got %q", v)
		}
		cfg.Pinecone.TopK = k
	}
	if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("REMOTE_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.RemoteTimeout = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, val := range map[string]string{
		"MONGO_URI":             c.MongoURI,
		"JWT_SECRET":            c.JWTSecret,
		"AZURE_OPENAI_API_KEY":  c.Azure.APIKey,
		"AZURE_OPENAI_ENDPOINT": c.Azure.Endpoint,
		"OPENAI_API_VERSION":    c.Azure.APIVersion,
		"AZURE_MODEL_NAME":      c.Azure.ChatDeployment,
	} {
		if val == "" {
			return fmt.Errorf("%s environment variable is not set", name)
		}
	}

	switch c.VectorBackend {
	case "pinecone":
		if c.Pinecone.APIKey == "" {
			return fmt.Errorf("PINECONE_API_KEY environment variable is not set")
		}
		if c.Pinecone.BaseURL == "" {
			return fmt.Errorf("PINECONE_URL environment variable is not set")
		}
	case "pgvector":
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI environment variable is not set")
		}
	default:
		return fmt.Errorf("VECTOR_BACKEND must be \"pinecone\" or \"pgvector\", got %q", c.VectorBackend)
	}

	switch c.AIProvider {
	case "azure":
	case "vertex":
		if c.Vertex.ProjectID == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID environment variable is not set")
		}
	default:
		return fmt.Errorf("AI_PROVIDER must be \"azure\" or \"vertex\", got %q", c.AIProvider)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
