package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Processing ProcessingConfig `json:"processing"`
	Vision     VisionConfig     `json:"vision"`
	Lines      LinesConfig      `json:"lines"`
	Deskew     DeskewConfig     `json:"deskew"`
	Crop       CropConfig       `json:"crop"`
	Model      ModelConfig      `json:"model"`
	Similarity SimilarityConfig `json:"similarity"`
	Server     ServerConfig     `json:"server"`
}

// ProcessingConfig holds configuration for image decoding and encoding
type ProcessingConfig struct {
	JPEGQuality  int    `json:"jpeg_quality"`
	MinImageSize int    `json:"min_image_size"`
	OutputDir    string `json:"output_dir"`
}

// VisionConfig holds configuration for subject detection
type VisionConfig struct {
	BlurKernel     int     `json:"blur_kernel"`
	ThresholdBlock int     `json:"threshold_block"`
	ThresholdC     float64 `json:"threshold_c"`
	MinAreaRatio   float64 `json:"min_area_ratio"`
	ThirdsRatio    float64 `json:"thirds_ratio"`
}

// LinesConfig holds configuration for line detection
type LinesConfig struct {
	BlurKernel     int     `json:"blur_kernel"`
	CannyLow       float32 `json:"canny_low"`
	CannyHigh      float32 `json:"canny_high"`
	HoughThreshold int     `json:"hough_threshold"`
	HoughMaxGap    float64 `json:"hough_max_gap"`
}

// DeskewConfig holds configuration for rotation estimation
type DeskewConfig struct {
	AlignedRatio     float64 `json:"aligned_ratio"`
	AlignedWindowDeg float64 `json:"aligned_window_deg"`
	MinSkewDeg       float64 `json:"min_skew_deg"`
	MajorRotationDeg float64 `json:"major_rotation_deg"`
}

// CropConfig holds configuration for crop planning
type CropConfig struct {
	DefaultSideRatio float64 `json:"default_side_ratio"`
	FocalSideRatio   float64 `json:"focal_side_ratio"`
	BlendFactor      float64 `json:"blend_factor"`
	ReanchorRatio    float64 `json:"reanchor_ratio"`
}

// ModelConfig holds configuration for the language model backend
type ModelConfig struct {
	Backend    string `json:"backend"` // "ollama" or "llamacpp"
	URL        string `json:"url"`
	ChatModel  string `json:"chat_model"`
	EmbedModel string `json:"embed_model"`
}

// SimilarityConfig holds configuration for photographer similarity search
type SimilarityConfig struct {
	EmbeddingsFile string `json:"embeddings_file"`
	TopK           int    `json:"top_k"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Address       string `json:"address"`
	MaxUploadMB   int64  `json:"max_upload_mb"`
	LogFile       string `json:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			JPEGQuality:  90,
			MinImageSize: 100,
			OutputDir:    "./output",
		},
		Vision: VisionConfig{
			BlurKernel:     5,
			ThresholdBlock: 11,
			ThresholdC:     2,
			MinAreaRatio:   0.01,
			ThirdsRatio:    0.15,
		},
		Lines: LinesConfig{
			BlurKernel:     5,
			CannyLow:       50,
			CannyHigh:      150,
			HoughThreshold: 100,
			HoughMaxGap:    10,
		},
		Deskew: DeskewConfig{
			AlignedRatio:     0.6,
			AlignedWindowDeg: 15,
			MinSkewDeg:       2,
			MajorRotationDeg: 45,
		},
		Crop: CropConfig{
			DefaultSideRatio: 0.8,
			FocalSideRatio:   0.75,
			BlendFactor:      0.3,
			ReanchorRatio:    0.8,
		},
		Model: ModelConfig{
			Backend:    "ollama",
			URL:        "http://localhost:11434",
			ChatModel:  "llama3.1",
			EmbedModel: "nomic-embed-text",
		},
		Similarity: SimilarityConfig{
			EmbeddingsFile: "style_embeddings.json",
			TopK:           3,
		},
		Server: ServerConfig{
			Address:       ":8000",
			MaxUploadMB:   20,
			LogFile:       "",
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Processing.JPEGQuality < 1 || c.Processing.JPEGQuality > 100 {
		return fmt.Errorf("processing.jpeg_quality must be between 1 and 100")
	}

	if c.Processing.MinImageSize < 1 {
		return fmt.Errorf("processing.min_image_size must be positive")
	}

	if c.Vision.BlurKernel < 1 || c.Vision.BlurKernel%2 == 0 {
		return fmt.Errorf("vision.blur_kernel must be a positive odd number")
	}

	if c.Vision.ThresholdBlock < 3 || c.Vision.ThresholdBlock%2 == 0 {
		return fmt.Errorf("vision.threshold_block must be an odd number >= 3")
	}

	if c.Vision.MinAreaRatio < 0 || c.Vision.MinAreaRatio > 1 {
		return fmt.Errorf("vision.min_area_ratio must be between 0 and 1")
	}

	if c.Vision.ThirdsRatio <= 0 || c.Vision.ThirdsRatio > 1 {
		return fmt.Errorf("vision.thirds_ratio must be between 0 and 1")
	}

	if c.Lines.CannyLow <= 0 || c.Lines.CannyHigh <= c.Lines.CannyLow {
		return fmt.Errorf("lines.canny_high must be greater than lines.canny_low")
	}

	if c.Deskew.AlignedRatio < 0 || c.Deskew.AlignedRatio > 1 {
		return fmt.Errorf("deskew.aligned_ratio must be between 0 and 1")
	}

	if c.Crop.DefaultSideRatio <= 0 || c.Crop.DefaultSideRatio > 1 {
		return fmt.Errorf("crop.default_side_ratio must be between 0 and 1")
	}

	if c.Crop.FocalSideRatio <= 0 || c.Crop.FocalSideRatio > 1 {
		return fmt.Errorf("crop.focal_side_ratio must be between 0 and 1")
	}

	if c.Crop.BlendFactor < 0 || c.Crop.BlendFactor > 1 {
		return fmt.Errorf("crop.blend_factor must be between 0 and 1")
	}

	if c.Model.Backend != "ollama" && c.Model.Backend != "llamacpp" {
		return fmt.Errorf("model.backend must be \"ollama\" or \"llamacpp\"")
	}

	if c.Similarity.TopK < 1 {
		return fmt.Errorf("similarity.top_k must be positive")
	}

	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "framecheck", "config.json")
}
