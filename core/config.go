package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "ExamSched")
	Conf.SetDefault("apiBaseUrl", "http://localhost:5000")
	Conf.SetDefault("requestTimeout", 15*time.Second)
	Conf.SetDefault("tokenFile", defaultTokenFile())
	Conf.SetDefault("rollbarToken", "")
	Conf.SetDefault("build", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		Conf.SetDefault("testMode", true)
	}
	Conf.Set("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}

// defaultTokenFile resolves the durable token location under the user's
// config dir; falls back to a dotfile in the working directory.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".examsched_token"
	}
	return filepath.Join(dir, "examsched", "token")
}
