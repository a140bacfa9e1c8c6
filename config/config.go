package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Pprof struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		}
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		}
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	}
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Planner PlannerConfig `mapstructure:"planner"`
}

// PlannerConfig carries the tuning knobs of the itinerary engine. The
// numbers mirror the product defaults; selection logic reads them from
// here so they can be changed without touching the algorithms.
type PlannerConfig struct {
	TopK                 int     `mapstructure:"topK"`
	PairStrategy         string  `mapstructure:"pairStrategy"` // "governorate" or "distance"
	SiteBudgetShare      float64 `mapstructure:"siteBudgetShare"`
	FoodBudgetShare      float64 `mapstructure:"foodBudgetShare"`
	UtilizationThreshold float64 `mapstructure:"utilizationThreshold"`
	MinSlackEGP          float64 `mapstructure:"minSlackEGP"`
	DinnerUpgradeShare   float64 `mapstructure:"dinnerUpgradeShare"`
	DinnerUpgradeCapEGP  float64 `mapstructure:"dinnerUpgradeCapEGP"`
	LunchUpgradeShare    float64 `mapstructure:"lunchUpgradeShare"`
	UpgradeRadiusKm      float64 `mapstructure:"upgradeRadiusKm"`
	PremiumMinSlackEGP   float64 `mapstructure:"premiumMinSlackEGP"`
	PremiumShare         float64 `mapstructure:"premiumShare"`
	PremiumCapEGP        float64 `mapstructure:"premiumCapEGP"`
	PremiumMaxActivities int     `mapstructure:"premiumMaxActivities"`
}

// DefaultPlannerConfig returns the engine defaults used when no planner
// block is present in the config file. Tests build on top of this.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		TopK:                 20,
		PairStrategy:         "governorate",
		SiteBudgetShare:      0.6,
		FoodBudgetShare:      0.4,
		UtilizationThreshold: 0.85,
		MinSlackEGP:          100,
		DinnerUpgradeShare:   0.6,
		DinnerUpgradeCapEGP:  500,
		LunchUpgradeShare:    0.4,
		UpgradeRadiusKm:      5,
		PremiumMinSlackEGP:   150,
		PremiumShare:         0.3,
		PremiumCapEGP:        200,
		PremiumMaxActivities: 2,
	}
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	if config.Planner.TopK == 0 {
		config.Planner = DefaultPlannerConfig()
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
