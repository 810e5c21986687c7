package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where the persisted CLI
	// settings are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// HardenedMarkerKey is the marker used when rendering hardened path
	// components, either ' or h
	HardenedMarkerKey = "HARDENED_MARKER"
	// NetworkKey is the network of the use info set by hdkey import
	// --coin-type, either mainnet or testnet. Without it, the network comes
	// from the key version bytes
	NetworkKey = "NETWORK"
	// OutputFormatKey selects how CBOR results are printed, either hex or
	// diag (RFC 8949 diagnostic notation)
	OutputFormatKey = "OUTPUT_FORMAT"

	// MainnetName ...
	MainnetName = "mainnet"
	// TestnetName ...
	TestnetName = "testnet"
	// HexFormat ...
	HexFormat = "hex"
	// DiagFormat ...
	DiagFormat = "diag"

	configFileName = "urkit.json"
)

var (
	// ErrInvalidNetwork ...
	ErrInvalidNetwork = errors.New("network must be either mainnet or testnet")
	// ErrInvalidOutputFormat ...
	ErrInvalidOutputFormat = errors.New("output format must be either hex or diag")
	// ErrInvalidLogLevel ...
	ErrInvalidLogLevel = fmt.Errorf(
		"log level must be in range [%d, %d]", log.PanicLevel, log.TraceLevel,
	)
	// ErrUnknownKey ...
	ErrUnknownKey = errors.New("unknown config key")
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("urkit", false)

// settableKeys are the keys that can be persisted in the datadir.
var settableKeys = []string{
	LogLevelKey, HardenedMarkerKey, NetworkKey, OutputFormatKey,
}

// InitConfig loads the configuration from defaults, the config file in the
// datadir, if any, and URKIT_ prefixed environment variables, in increasing
// order of priority.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("URKIT")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(HardenedMarkerKey, string(urtypes.MarkerApostrophe))
	vip.SetDefault(NetworkKey, MainnetName)
	vip.SetDefault(OutputFormatKey, HexFormat)

	vip.SetConfigFile(configFilePath())
	vip.SetConfigType("json")
	if err := vip.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("error while reading config file: %s", err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetHardenedMarker returns the configured marker for rendering paths.
func GetHardenedMarker() urtypes.HardenedMarker {
	marker, _ := urtypes.ParseHardenedMarker(GetString(HardenedMarkerKey))
	return marker
}

// GetNetwork returns the configured network as a coin info network value.
func GetNetwork() int {
	if strings.EqualFold(GetString(NetworkKey), TestnetName) {
		return urtypes.NetworkTestnet
	}
	return urtypes.NetworkMainnet
}

// Set validates and persists key=value into the config file of the datadir.
func Set(key, value string) error {
	key = strings.ToUpper(key)
	if !isSettable(key) {
		return fmt.Errorf("%w %s", ErrUnknownKey, key)
	}

	prev := vip.Get(key)
	vip.Set(key, value)
	if err := validate(); err != nil {
		vip.Set(key, prev)
		return err
	}

	if err := makeDirectoryIfNotExists(GetDatadir()); err != nil {
		return err
	}
	return vip.WriteConfigAs(configFilePath())
}

// Settings returns the current value of every settable key.
func Settings() map[string]string {
	settings := make(map[string]string, len(settableKeys))
	for _, key := range settableKeys {
		settings[key] = GetString(key)
	}
	return settings
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, err := urtypes.ParseHardenedMarker(GetString(HardenedMarkerKey)); err != nil {
		return err
	}

	switch strings.ToLower(GetString(NetworkKey)) {
	case MainnetName, TestnetName:
	default:
		return ErrInvalidNetwork
	}

	switch strings.ToLower(GetString(OutputFormatKey)) {
	case HexFormat, DiagFormat:
	default:
		return ErrInvalidOutputFormat
	}

	level := GetInt(LogLevelKey)
	if level < int(log.PanicLevel) || level > int(log.TraceLevel) {
		return ErrInvalidLogLevel
	}

	return nil
}

func configFilePath() string {
	return filepath.Join(GetDatadir(), configFileName)
}

func isSettable(key string) bool {
	for _, k := range settableKeys {
		if k == key {
			return true
		}
	}
	return false
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
