package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type Config struct {
	Env         string      `json:"env"`
	HTTP        HTTP        `json:"http"`
	Storage     Storage     `json:"storage"`
	Redis       Redis       `json:"redis"`
	Blob        Blob        `json:"blob"`
	Kafka       Kafka       `json:"kafka"`
	EventWorker EventWorker `json:"event-worker"`
	Profile     Profile     `json:"profile"`
}

type HTTP struct {
	Port    int      `json:"port"`
	Timeout Duration `json:"timeout"`
}

type Storage struct {
	DBName   string `json:"dbname"`
	User     string `json:"user"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Timeout  int    `json:"connection-timeout,omitempty"`
}

type Redis struct {
	Addr     string   `json:"addr"`
	Password string   `json:"password,omitempty"`
	DB       int      `json:"db,omitempty"`
	TTL      Duration `json:"ttl"`
}

type Blob struct {
	Endpoint      string   `json:"endpoint"`
	AccessKey     string   `json:"access-key"`
	SecretKey     string   `json:"secret-key"`
	UseSSL        bool     `json:"use-ssl"`
	Bucket        string   `json:"bucket"`
	PublicBaseURL string   `json:"public-base-url"`
	CacheLifetime Duration `json:"cache-lifetime"`
}

type Kafka struct {
	Addrs   []string `json:"addrs"`
	Topic   string   `json:"topic"`
	Group   string   `json:"group"`
	Timeout int      `json:"timeout"`
	Retries int      `json:"retries"`
}

type EventWorker struct {
	PageSize int      `json:"page-size"`
	Interval Duration `json:"interval"`
	Timeout  Duration `json:"timeout"`
}

type Profile struct {
	Name      string `json:"name"`
	Caption   string `json:"caption"`
	AvatarUrl string `json:"avatar-url"`
	Networks  string `json:"networks"`
	City      string `json:"city"`
}

const (
	defaultConfigPath = "./config/config.json"
)

// New creates new object of applications' configuration
func New() *Config {
	path := fetchConfigPath()

	cfg := MustLoad(path)

	return cfg
}

// MustLoad is wrapper of load function to panic if error occurred
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic("failed to load config file: " + err.Error())
	}

	return cfg
}

// Load loads config from json file by path. Return error if occurred
func Load(path string) (*Config, error) {
	cfg := new(Config)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	jsonContent, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	err = json.Unmarshal(jsonContent, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// fetchConfigPath fetches config path from either flag 'config' or environment variable.
// If both are empty default value will be returned
// flag > env > default
func fetchConfigPath() string {
	res := ""

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res != "" {
		return res
	}

	res = os.Getenv("CONFIG_PATH")
	if res != "" {
		return res
	}

	return defaultConfigPath
}
