// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bimexport/app/logging"

	"github.com/redis/go-redis/v9"
)

// Configuration types
type Config struct {
	ApsServer string         `json:"apsServer"` // base url of the Autodesk Platform Services API
	RedisHost string         `json:"redisHost"` // redis host, used for the export job queue and the session token cache
	Options   OptionalConfig `json:"options"`   // customizations
}

type OptionalConfig struct {
	OauthClientId           string   `json:"oauthClientId,omitempty"`           // APS application client id used for the three-legged token exchange
	PathToOauthClientSecret string   `json:"pathToOauthClientSecret,omitempty"` // path to the file containing the APS client secret
	OauthRedirectUri        string   `json:"oauthRedirectUri,omitempty"`        // redirect uri registered with the APS application
	PathToRedisPassword     string   `json:"pathToRedisPassword,omitempty"`     // by default no password for Redis is set, if you need to authenticate, store here the path to the file containing the redis password
	RedisDB                 int      `json:"redisDB,omitempty"`                 // by default DB 0 is used, if you need to use other DB, specify it here
	FolderScanDelayMs       int      `json:"folderScanDelayMs,omitempty"`       // delay between scanned folders during full-tree discovery, keeps the traversal within the APS rate limits (default 50)
	S3Config                S3Config `json:"s3Config"`                          // config for delivering async export results, the bucket where archives are uploaded and presigned
}

// Environment variables used for credentials when delivering export results to S3:
// * Access Key ID:     AWS_ACCESS_KEY_ID or AWS_ACCESS_KEY
// * Secret Access Key: AWS_SECRET_ACCESS_KEY or AWS_SECRET_KEY
type S3Config struct {
	AWSEndpoint  string `json:"awsEndpoint"`
	AWSRegion    string `json:"awsRegion"`
	AWSPathstyle bool   `json:"awsPathstyle"`
	AWSBucket    string `json:"awsBucket"`
}

var config Config
var oauthClientSecret = "" // will be read from pathToOauthClientSecret
var redisPassword = ""     // will be read from pathToRedisPassword

var rdb RedisClient // redis client singleton
var LockMaxDuration = 168 * time.Hour

func init() {
	// read configuration
	configFile := os.Getenv("BACKEND_CONFIG_FILE")
	b, err := os.ReadFile(configFile)
	if err == nil {
		logging.Logger.Infof("using backend configuration from %v", configFile)
		err := json.Unmarshal(b, &config)
		if err != nil {
			panic(fmt.Errorf("config could not be loaded from %v: %v", configFile, err))
		}
	}
	if config.ApsServer == "" {
		config.ApsServer = "https://developer.api.autodesk.com"
	}
	if config.Options.FolderScanDelayMs == 0 {
		config.Options.FolderScanDelayMs = 50
	}

	// initialize variables
	b, err = os.ReadFile(config.Options.PathToOauthClientSecret)
	if err == nil {
		logging.Logger.Infof("oauth client secret is read from file %v", config.Options.PathToOauthClientSecret)
		oauthClientSecret = strings.TrimSpace(string(b))
	}

	b, err = os.ReadFile(config.Options.PathToRedisPassword)
	if err == nil {
		logging.Logger.Infof("redis password read from file %v", config.Options.PathToRedisPassword)
		redisPassword = strings.TrimSpace(string(b))
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     config.RedisHost,
		Password: redisPassword,
		DB:       config.Options.RedisDB,
	})

	http.DefaultClient.Timeout = LockMaxDuration
}

type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	RPop(ctx context.Context, key string) *redis.StringCmd
}

func GetRedis() RedisClient {
	return rdb
}

func SetRedis(r RedisClient) {
	rdb = r
}

func GetConfig() Config {
	return config
}

// SetConfig overrides the server location and traversal throttling, used by the tests.
func SetConfig(apsServer string, folderScanDelayMs int) {
	config.ApsServer = apsServer
	config.Options.FolderScanDelayMs = folderScanDelayMs
}

func OauthClientSecret() string {
	return oauthClientSecret
}

func RedisReady(ctx context.Context) bool {
	res, err := GetRedis().Ping(ctx).Result()
	if err != nil {
		logging.Logger.Errorf("redis error: %v", err)
		return false
	}
	return res == "PONG"
}
