package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode"
)

var configPathFlag = flag.String("config", "", "The location of the config file. If this argument is not provided the paths './trivia-config.json' and './config/trivia-config.json' are searched in that order.")

type serverConfig struct {
	DB struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		Name     string `json:"name"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslMode"`
	} `json:"db"`

	Auth struct {
		// Secret256 is the base HMAC secret for validating tokens. When it
		// is empty the server falls back to a fixed local dev token.
		Secret256 string `json:"secret256"`
		Issuer    string `json:"issuer"`
		ClientID  string `json:"clientId"`
	} `json:"auth"`

	Server struct {
		Addr            string `json:"addr"`
		ShutdownTimeout string `json:"shutdownTimeout"`
	} `json:"server"`

	Game struct {
		// IdleShutdownMins is how long the process lingers with no host
		// connected before signalling shutdown.
		IdleShutdownMins int `json:"idleShutdownMins"`
	} `json:"game"`
}

func loadConfig() *serverConfig {
	var configPath string
	if configPathFlag != nil {
		configPath = strings.TrimSpace(*configPathFlag)
	}

	foundPath := false
	var usePath string
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err != nil {
			log.Fatal("error opening config file: ", err)
		}
		usePath = configPath
		foundPath = true
	}

	if !foundPath {
		if _, err := os.Stat("./trivia-config.json"); err == nil {
			usePath = "./trivia-config.json"
			foundPath = true
		}
	}

	if !foundPath {
		if _, err := os.Stat("./config/trivia-config.json"); err == nil {
			usePath = "./config/trivia-config.json"
			foundPath = true
		}
	}

	config := serverConfig{}
	if !foundPath {
		// A missing config file means a local run with in-memory defaults.
		return &config
	}

	configBytes, err := os.ReadFile(usePath)
	if err != nil {
		log.Fatal("error reading config file: ", err)
	}

	err = json.Unmarshal(configBytes, &config)
	if err != nil {
		log.Fatal("error parsing config file json: ", err)
	}

	// Secrets can come from the environment instead of the file.
	if v, ok := getStringValue(os.Getenv("TRIVIA_AUTH_SECRET")); ok {
		config.Auth.Secret256 = v
	}
	if v, ok := getStringValue(os.Getenv("TRIVIA_DB_PASSWORD")); ok {
		config.DB.Password = v
	}

	return &config
}

func getStringValue(s string) (string, bool) {
	if len(s) > 0 {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) > 0 {
			return trimmed, true
		}
	}
	return "", false
}

// requireStringValue makes sure that a string is not empty. If an empty string is provided
// and there is a default value, the default value is returned. If there is an empty string
// and no default value, the program exits with the given error string.
func requireStringValue(s string, def string, errString string) string {
	if len(s) > 0 {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) > 0 {
			return trimmed
		}
	}

	if len(def) > 0 {
		return def
	}

	log.Fatal(errString)
	return "" // unreachable
}

func escapeDBValue(unescaped string) string {
	escaped := unescaped
	quoteString := false

	for _, r := range escaped {
		if unicode.IsSpace(r) {
			quoteString = true
			break
		}
	}

	if quoteString {
		escaped = strings.Replace(escaped, "\\", "\\\\", -1)
		escaped = strings.Replace(escaped, "'", "\\'", -1)
		return "'" + escaped + "'"
	}
	return escaped
}

func createSQLConnectionString(config *serverConfig) string {
	var settings = make([]string, 0)
	settings = append(settings, fmt.Sprintf("user=%s", escapeDBValue(requireStringValue(config.DB.User, "", "db.user cannot be empty"))))
	settings = append(settings, fmt.Sprintf("dbname=%s", escapeDBValue(requireStringValue(config.DB.Name, "", "db.name cannot be empty"))))
	settings = append(settings, fmt.Sprintf("sslmode=%s", escapeDBValue(requireStringValue(config.DB.SSLMode, "disable", "db.sslmode should have a default"))))

	password, ok := getStringValue(config.DB.Password)
	if ok {
		settings = append(settings, fmt.Sprintf("password=%s", escapeDBValue(password)))
	}

	host, ok := getStringValue(config.DB.Host)
	if ok {
		settings = append(settings, fmt.Sprintf("host=%s", escapeDBValue(host)))
	}

	port, ok := getStringValue(config.DB.Port)
	if ok {
		settings = append(settings, fmt.Sprintf("port=%s", escapeDBValue(port)))
	}

	return strings.Join(settings, " ")
}
