package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-s sync server address used by the client
//	-d database DSN
//	-c/-config json file path with configs
//	-token client bearer token
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-schema-version shared schema version
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-max-page-size server pull page cap
//	-sync-interval timer trigger period
//	-batch-size push batch size
//	-page-size pull page size
//	-log-file client log file
//	-once run a single sync cycle and exit
//	-issue-token print a token for the given identity and exit
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-outbox-sync", flag.ContinueOnError)

	var serverAddress NetAddress
	var adapterAddress string
	var databaseDSN string
	var jsonConfigPath string
	var token string
	var tokenSignKey string
	var tokenIssuer string
	var schemaVersion int
	var requestTimeout time.Duration
	var maxPageSize int
	var syncInterval time.Duration
	var batchSize int
	var pageSize int
	var logFile string
	var once bool
	var issueToken string

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&adapterAddress, "s", "", "Sync server address")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&token, "token", "", "Client bearer token")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.IntVar(&schemaVersion, "schema-version", 0, "Schema version")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&maxPageSize, "max-page-size", 0, "Maximum pull page size")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Sync interval (e.g., 5m)")
	fs.IntVar(&batchSize, "batch-size", 0, "Push batch size")
	fs.IntVar(&pageSize, "page-size", 0, "Pull page size")
	fs.StringVar(&logFile, "log-file", "", "Client log file")
	fs.BoolVar(&once, "once", false, "Run one sync cycle and exit")
	fs.StringVar(&issueToken, "issue-token", "", "Print a token for the identity and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			Token:         token,
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			SchemaVersion: schemaVersion,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
			MaxPageSize:    maxPageSize,
			IssueToken:     issueToken,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress,
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
			BatchSize:    batchSize,
			PageSize:     pageSize,
			RunOnce:      once,
		},
		Log:          Log{File: logFile},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are
// invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
