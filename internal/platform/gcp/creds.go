package gcp

import (
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// storageEnv is the slice of the environment the storage client reads.
type storageEnv struct {
	EmulatorHost    string
	CredentialsJSON string
	CredentialsFile string
}

func storageEnvFromOS() storageEnv {
	return storageEnv{
		EmulatorHost:    strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/"),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	}
}

// readOnlyOptions builds client options for reading sources. An emulator
// takes no credentials. Inline JSON wins over a key file; with neither, the
// client falls back to application default credentials.
func (e storageEnv) readOnlyOptions() []option.ClientOption {
	if e.EmulatorHost != "" {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadOnly)}
	creds := e.CredentialsJSON
	if creds == "" {
		creds = e.CredentialsFile
	}
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
