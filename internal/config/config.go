// Package config is responsible for setting the program config from
// the config file and command-line arguments.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const Version = "v2.0.0"

var appCfg = &Config{}

var once sync.Once

var errInitFailed = errors.New(
	"unable to initialise pontaj settings from the configuration file",
)

var (
	configDir      = "pontaj"
	configFileName = "config.yml"
	dbFileName     = "pontaj.db"
	logFileName    = "pontaj.log"
)

const (
	configDefaultAddress = "default_address"
	configBackupDir      = "backup_dir"
	configNotify         = "notify"
	configSessionCmd     = "session_cmd"
	configHourlyRate     = "hourly_rate"
	configWeeklyHours    = "weekly_hours"
	configTaxClass       = "tax_class"
	configSocialClass    = "social_class"
	configDarkTheme      = "dark_theme"
	config24HourClock    = "24hr_clock"
)

const (
	defaultHourlyRate  = 16.5
	defaultWeeklyHours = 40
	defaultTaxClass    = 1
	defaultSocialClass = 1
)

// Config represents the program configuration derived from the config file
// and command-line arguments.
type Config struct {
	PathToConfig   string  `json:"path_to_config"`
	PathToDB       string  `json:"path_to_db"`
	PathToLogFile  string  `json:"path_to_log_file"`
	BackupDir      string  `json:"backup_dir"`
	DefaultAddress string  `json:"default_address"`
	SessionCmd     string  `json:"session_cmd"`
	HourlyRate     float64 `json:"hourly_rate"`
	WeeklyHours    float64 `json:"weekly_hours"`
	TaxClass       int     `json:"tax_class"`
	SocialClass    int     `json:"social_class"`
	Notify         bool    `json:"notify"`
	DarkTheme      bool    `json:"dark_theme"`
	TwentyFourHour bool    `json:"twenty_four_hour_clock"`
}

func init() {
	env := strings.TrimSpace(os.Getenv("PONTAJ_ENV"))
	if env != "" {
		configFileName = fmt.Sprintf("config_%s.yml", env)
		dbFileName = fmt.Sprintf("pontaj_%s.db", env)
		logFileName = fmt.Sprintf("pontaj_%s.log", env)
	}
}

// Dir returns the app's directory name inside the XDG base directories.
func Dir() string {
	return configDir
}

// initConfig reads the configuration file, creating it with default values
// if it does not exist yet.
func initConfig() error {
	viper.SetConfigName(strings.TrimSuffix(configFileName, ".yml"))
	viper.SetConfigType("yaml")

	relPath := filepath.Join(configDir, configFileName)

	pathToConfigFile, err := xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	appCfg.PathToConfig = pathToConfigFile

	viper.AddConfigPath(filepath.Dir(pathToConfigFile))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return viper.WriteConfigAs(pathToConfigFile)
		}

		return err
	}

	return nil
}

func setDefaults() {
	viper.SetDefault(configDefaultAddress, "")
	viper.SetDefault(configBackupDir, "")
	viper.SetDefault(configNotify, true)
	viper.SetDefault(configSessionCmd, "")
	viper.SetDefault(configHourlyRate, defaultHourlyRate)
	viper.SetDefault(configWeeklyHours, defaultWeeklyHours)
	viper.SetDefault(configTaxClass, defaultTaxClass)
	viper.SetDefault(configSocialClass, defaultSocialClass)
	viper.SetDefault(configDarkTheme, true)
	viper.SetDefault(config24HourClock, true)
}

func setConfig(ctx *cli.Context) error {
	pathToDB, err := xdg.DataFile(filepath.Join(configDir, dbFileName))
	if err != nil {
		return err
	}

	appCfg.PathToDB = pathToDB

	dataDir := filepath.Dir(pathToDB)
	appCfg.PathToLogFile = filepath.Join(dataDir, "log", logFileName)

	// set from the config file
	appCfg.DefaultAddress = viper.GetString(configDefaultAddress)
	appCfg.BackupDir = viper.GetString(configBackupDir)
	appCfg.Notify = viper.GetBool(configNotify)
	appCfg.SessionCmd = viper.GetString(configSessionCmd)
	appCfg.HourlyRate = viper.GetFloat64(configHourlyRate)
	appCfg.WeeklyHours = viper.GetFloat64(configWeeklyHours)
	appCfg.TaxClass = viper.GetInt(configTaxClass)
	appCfg.SocialClass = viper.GetInt(configSocialClass)
	appCfg.DarkTheme = viper.GetBool(configDarkTheme)
	appCfg.TwentyFourHour = viper.GetBool(config24HourClock)

	if appCfg.BackupDir == "" {
		appCfg.BackupDir = filepath.Join(dataDir, "backups")
	}

	// set from command-line arguments
	if ctx.String("backup-dir") != "" {
		appCfg.BackupDir = ctx.String("backup-dir")
	}

	if ctx.Bool("disable-notification") {
		appCfg.Notify = false
	}

	if ctx.String("session-cmd") != "" {
		appCfg.SessionCmd = ctx.String("session-cmd")
	}

	if ctx.Float64("rate") > 0 {
		appCfg.HourlyRate = ctx.Float64("rate")
	}

	return nil
}

// Get initializes and returns the program configuration. The
// initialization is done just once no matter how many times it is called.
func Get(ctx *cli.Context) *Config {
	once.Do(func() {
		err := initConfig()
		if err == nil {
			err = setConfig(ctx)
		}

		if err != nil {
			pterm.Error.Printfln("%s: %s", errInitFailed.Error(), err.Error())
			os.Exit(1)
		}
	})

	return appCfg
}
