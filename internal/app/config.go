package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/scoring"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type GSheetConfig struct {
	SheetID         string   `toml:"sheet_id"`
	SheetName       string   `toml:"sheet_name"`
	CredentialsPath string   `toml:"credentials_path"`
	Schedule        string   `toml:"schedule"`
	StudentsRange   string   `toml:"students_range"`
	FirstStudentRow int      `toml:"first_student_row"`
	GradesColumn    string   `toml:"grades_column"`
	TimestampRange  string   `toml:"timestamp_range"`
	Assignments     []string `toml:"assignments"`
}

type Config struct {
	Server struct {
		Port        string   `toml:"port"`
		EnableAuth  bool     `toml:"enable_auth"`
		CORSOrigins []string `toml:"cors_origins"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		UserHeader      string         `toml:"user_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN string `toml:"dsn"`
	} `toml:"database"`

	Validation validation.Bounds `toml:"validation"`

	Scoring scoring.Grader `toml:"scoring"`

	Reports struct {
		Dir string `toml:"dir"`
	} `toml:"reports"`

	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`

	GSheet        []GSheetConfig `toml:"gsheet"`
	EmojiVariants []string       `toml:"emoji_variants"`
}

// DefaultConfig is what LoadConfig starts from; values in the file override it.
func DefaultConfig() *Config {
	var config Config
	config.Server.Port = ":9999"
	config.Auth.TokenHeader = "Authorization"
	config.Auth.TokenKeyTemplate = "auth:{user}"
	config.API.UserHeader = "X-Gradebook-User"
	config.Database.DSN = "gradebook.db"
	config.Validation = validation.DefaultBounds()
	config.Scoring = scoring.DefaultGrader()
	config.Reports.Dir = "reports"
	config.EmojiVariants = []string{"📚"}
	return &config
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	applyEnv(config)

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Validation.GroupMin > config.Validation.GroupMax {
		return nil, fmt.Errorf("validation: group_min %d is above group_max %d", config.Validation.GroupMin, config.Validation.GroupMax)
	}
	if config.Validation.WeekMin > config.Validation.WeekMax {
		return nil, fmt.Errorf("validation: week_min %d is above week_max %d", config.Validation.WeekMin, config.Validation.WeekMax)
	}
	if config.Validation.GradeMin > config.Validation.GradeMax {
		return nil, fmt.Errorf("validation: grade_min %g is above grade_max %g", config.Validation.GradeMin, config.Validation.GradeMax)
	}
	for i := range config.GSheet {
		if config.GSheet[i].FirstStudentRow == 0 {
			config.GSheet[i].FirstStudentRow = 1
		}
	}

	logger.Debug.Printf("Loaded scoring config: %+v", config.Scoring)
	logger.Debug.Printf("Loaded validation bounds: %+v", config.Validation)

	return config, nil
}

// Secrets may come from the environment instead of the config file.
const (
	envDSN      = "GRADEBOOK_DSN"
	envRedisURL = "GRADEBOOK_REDIS_URL"
	envBotToken = "GRADEBOOK_BOT_TOKEN"
)

// LoadEnv reads a dotenv file into the process environment if it exists.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	logger.Debug.Printf("Loaded environment from %s", path)
	return nil
}

func applyEnv(config *Config) {
	if v := os.Getenv(envDSN); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		config.Auth.RedisURL = v
	}
	if v := os.Getenv(envBotToken); v != "" {
		config.Bot.Token = v
	}
}
