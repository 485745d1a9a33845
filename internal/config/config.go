package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// LogMaxSizeKey is the size in megabytes after which the log file is rotated
	LogMaxSizeKey = "LOG_MAX_SIZE"
	// EscrowAccountKey is the account of the asset ledger holding the escrowed value
	EscrowAccountKey = "ESCROW_ACCOUNT"
	// TransferTypeKey is used to switch the value transfer service between the
	// local ledger and a remote asset service
	TransferTypeKey = "TRANSFER_TYPE"
	// TransferEndpointKey is the base URL of the remote asset service
	TransferEndpointKey = "TRANSFER_ENDPOINT"
	// TransferRateLimitKey is the max number of requests per second sent to the
	// remote asset service
	TransferRateLimitKey = "TRANSFER_RATE_LIMIT"
	// WebhookPollIntervalKey is the interval in seconds between two reads of
	// the event log for delivering events to webhooks
	WebhookPollIntervalKey = "WEBHOOK_POLL_INTERVAL"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic escrowd statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// EnableDevLedgerKey exposes the deposit and balance endpoints of the
	// local asset ledger, for development only
	EnableDevLedgerKey = "ENABLE_DEV_LEDGER"

	DbLocation       = "db"
	LogLocation      = "logs"
	ProfilerLocation = "stats"

	TransferTypeLocal  = "local"
	TransferTypeRemote = "remote"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("escrowd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROW")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9000)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(LogMaxSizeKey, 10)
	vip.SetDefault(EscrowAccountKey, "escrow")
	vip.SetDefault(TransferTypeKey, TransferTypeLocal)
	vip.SetDefault(TransferRateLimitKey, 10)
	vip.SetDefault(WebhookPollIntervalKey, 5)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)
	vip.SetDefault(EnableDevLedgerKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDuration returns the value of a key expressed in seconds.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetLogFile() string {
	return filepath.Join(GetDatadir(), LogLocation, "escrowd.log")
}

func GetProfilerDir() string {
	return filepath.Join(GetDatadir(), ProfilerLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	port := GetInt(ListeningPortKey)
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number", ListeningPortKey)
	}

	if len(GetString(EscrowAccountKey)) <= 0 {
		return fmt.Errorf("missing escrow custody account")
	}

	switch GetString(TransferTypeKey) {
	case TransferTypeLocal:
	case TransferTypeRemote:
		endpoint := GetString(TransferEndpointKey)
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf(
				"%s must be a valid URI for remote transfers", TransferEndpointKey,
			)
		}
	default:
		return fmt.Errorf(
			"%s must be either %s or %s",
			TransferTypeKey, TransferTypeLocal, TransferTypeRemote,
		)
	}
	if GetBool(EnableDevLedgerKey) &&
		GetString(TransferTypeKey) != TransferTypeLocal {
		return fmt.Errorf(
			"%s requires %s to be %s",
			EnableDevLedgerKey, TransferTypeKey, TransferTypeLocal,
		)
	}

	if GetInt(TransferRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", TransferRateLimitKey)
	}
	if GetInt(WebhookPollIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", WebhookPollIntervalKey)
	}
	if GetInt(LogMaxSizeKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", LogMaxSizeKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, LogLocation)); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
