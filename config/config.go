package config

import (
	"encoding/json"
	"log"
	"os"
)

const defaultMinPasswordLen = 6

type Config struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	MinPasswordLen int    `json:"min_password_len"`
	Env            string `json:"-"`
	DatabaseUrl    string `json:"-"`
	Secret         []byte `json:"-"`
}

func MustLoad(filePath string) *Config {
	cfg := &Config{}
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		log.Fatal("Config at \"" + filePath + "\" not found.")
	}
	err = json.Unmarshal(data, cfg)
	if err != nil {
		log.Fatal("Config parsing failed with error - " + err.Error())
	}
	if cfg.MinPasswordLen <= 0 {
		cfg.MinPasswordLen = defaultMinPasswordLen
	}
	cfg.Env = os.Getenv("GO_ENV")
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	cfg.Secret = []byte(os.Getenv("SECRET"))
	return cfg
}

func WriteTemplate(filePath string) {
	data, err := json.MarshalIndent(&Config{}, "", "  ")
	if err != nil {
		log.Fatal("Config parsing failed with error - " + err.Error())
	}
	err = os.WriteFile(filePath, data, 0666)
	if err != nil {
		log.Fatal("Failed to save config template with error - " + err.Error())
	}
}
