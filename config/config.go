package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nknorg/ballot/common"
	"github.com/pbnjay/memory"
)

const (
	DBVersion             = 0x01
	MaxProposalNameLength = 32
	MaxClientMessageSize  = 1 * 1024 * 1024
)

const (
	defaultConfigFile           = "config.json"
	defaultDBBlockCachePercent  = 1.0
	defaultDBBlockCacheMinSize  = 8 * 1024 * 1024
	defaultDBBlockCacheMaxSize  = 512 * 1024 * 1024
	defaultLogFileCheckInterval = 20 * time.Second
)

var (
	Version string

	ConfigFile  string
	LogPath     string
	ChainDBPath string
	Chairperson string
	Proposals   string
	InMemory    bool
	Debug       bool

	Parameters = &Configuration{
		Version:              1,
		HttpJsonPort:         30003,
		HttpWsPort:           30002,
		APIListenAddr:        "127.0.0.1",
		WebServicePort:       30000,
		WebServiceListenAddr: "127.0.0.1",
		LogLevel:             1,
		MaxLogFileSize:       20,
		LogPath:              "Log",
		ChainDBPath:          "BallotDB",
		DBFilesCacheCapacity: 100,
		RPCReadTimeout:       5,
		RPCWriteTimeout:      10,
		RPCIdleTimeout:       0,
		RPCKeepAlivesEnabled: false,
		RPCIPRateLimit:       10,
		RPCIPRateBurst:       100,
		WsIPRateLimit:        10,
		WsIPRateBurst:        100,
		OperationRateLimit:   2,
		OperationRateBurst:   20,
		Proposals:            []string{"first", "second", "third"},
	}
)

type Configuration struct {
	Version              int               `json:"Version"`
	HttpJsonPort         uint16            `json:"HttpJsonPort"`
	HttpWsPort           uint16            `json:"HttpWsPort"`
	APIListenAddr        string            `json:"APIListenAddr"` // callers are not authenticated, keep it local
	WebServicePort       uint16            `json:"WebServicePort"`
	WebServiceListenAddr string            `json:"WebServiceListenAddr"`
	LogLevel             int               `json:"LogLevel"`
	MaxLogFileSize       uint32            `json:"MaxLogSize"` // in megabytes (MB)
	LogPath              string            `json:"LogPath"`
	ChainDBPath          string            `json:"ChainDBPath"`
	DBBlockCacheSize     uint32            `json:"DBBlockCacheSize"` // in bytes, 0 to size from total memory
	DBFilesCacheCapacity uint32            `json:"DBFilesCacheCapacity"`
	RPCReadTimeout       time.Duration     `json:"RPCReadTimeout"`  // in seconds
	RPCWriteTimeout      time.Duration     `json:"RPCWriteTimeout"` // in seconds
	RPCIdleTimeout       time.Duration     `json:"RPCIdleTimeout"`  // in seconds
	RPCKeepAlivesEnabled bool              `json:"RPCKeepAlivesEnabled"`
	RPCIPRateLimit       float64           `json:"RPCIPRateLimit"` // requests per second, 0 for no limit
	RPCIPRateBurst       uint32            `json:"RPCIPRateBurst"`
	WsIPRateLimit        float64           `json:"WsIPRateLimit"` // connections per second, 0 for no limit
	WsIPRateBurst        uint32            `json:"WsIPRateBurst"`
	OperationRateLimit   float64           `json:"OperationRateLimit"` // operations per second per caller, 0 for no limit
	OperationRateBurst   uint32            `json:"OperationRateBurst"`
	Chairperson          string            `json:"Chairperson"`
	Proposals            []string          `json:"Proposals"`
	Allocations          map[string]string `json:"Allocations"` // address -> native value
}

// Init loads the config file (if any) into Parameters, applies command line
// overrides and verifies the result.
func Init() error {
	file, err := OpenConfigFile()
	if err == nil {
		err = json.Unmarshal(file, Parameters)
		if err != nil {
			return err
		}
	} else {
		log.Println("Config file not exists, use default parameters.")
	}

	if len(LogPath) > 0 {
		Parameters.LogPath = LogPath
	}

	if len(ChainDBPath) > 0 {
		Parameters.ChainDBPath = ChainDBPath
	}

	if len(Chairperson) > 0 {
		Parameters.Chairperson = Chairperson
	}

	if len(Proposals) > 0 {
		Parameters.Proposals = strings.Split(Proposals, ",")
	}

	if Parameters.DBBlockCacheSize == 0 {
		Parameters.DBBlockCacheSize = defaultBlockCacheSize(memory.TotalMemory())
		log.Printf("Set DBBlockCacheSize to %v", Parameters.DBBlockCacheSize)
	}

	return Parameters.verify()
}

func defaultBlockCacheSize(totalMemory uint64) uint32 {
	size := uint64(float64(totalMemory) * defaultDBBlockCachePercent / 100.0)
	if size < defaultDBBlockCacheMinSize {
		size = defaultDBBlockCacheMinSize
	}
	if size > defaultDBBlockCacheMaxSize {
		size = defaultDBBlockCacheMaxSize
	}
	return uint32(size)
}

func (config *Configuration) verify() error {
	if len(config.Proposals) == 0 {
		return errors.New("proposal list in config file should not be blank")
	}

	for _, name := range config.Proposals {
		if len(name) > MaxProposalNameLength {
			return fmt.Errorf("proposal name %q is longer than %d bytes", name, MaxProposalNameLength)
		}
	}

	if len(config.Chairperson) > 0 {
		if _, err := common.ToScriptHash(config.Chairperson); err != nil {
			return fmt.Errorf("parse Chairperson error: %v", err)
		}
	}

	for addr, amount := range config.Allocations {
		if _, err := common.ToScriptHash(addr); err != nil {
			return fmt.Errorf("parse allocation address %s error: %v", addr, err)
		}
		value, err := common.StringToFixed64(amount)
		if err != nil {
			return fmt.Errorf("parse allocation amount %s error: %v", amount, err)
		}
		if value < 0 {
			return fmt.Errorf("allocation amount %s is negative", amount)
		}
	}

	if config.LogLevel < 0 || config.LogLevel > 3 {
		return fmt.Errorf("invalid LogLevel %d", config.LogLevel)
	}

	return nil
}

// APIListenAddr returns the JSON-RPC or websocket listen address for port.
func APIListenAddr(port uint16) string {
	return net.JoinHostPort(Parameters.APIListenAddr, strconv.Itoa(int(port)))
}

// LogFileCheckInterval is how often the logger checks whether to roll over to
// a new log file.
func LogFileCheckInterval() time.Duration {
	return defaultLogFileCheckInterval
}

func GetConfigFile() string {
	configFile := ConfigFile
	if configFile == "" {
		configFile = defaultConfigFile
	}
	return configFile
}

func OpenConfigFile() ([]byte, error) {
	configFile := GetConfigFile()
	if _, err := os.Stat(configFile); err != nil {
		return nil, err
	}
	file, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	// Remove the UTF-8 Byte Order Mark
	file = bytes.TrimPrefix(file, []byte("\xef\xbb\xbf"))
	return file, nil
}
