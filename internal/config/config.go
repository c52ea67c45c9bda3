package config

import (
	"log"
	"os"
	"strconv"
)

// Config captures the tunables required to start the pass forge server.
type Config struct {
	Addr             string
	DBPath           string
	IdentityPath     string
	IdentityPassword string
	SignatureFormat  string
	DigestAlgorithm  string
	OutputDir        string

	PassTypeIdentifier string
	TeamIdentifier     string
	OrganizationName   string
	WebServiceURL      string
	EmbedStrip3x       bool

	Logger *log.Logger
}

// FromEnv reads the PASSFORGE_* environment, applying defaults suitable for
// local development. The identity password intentionally has no default.
func FromEnv() Config {
	return Config{
		Addr:             getenv("PASSFORGE_ADDR", ":8475"),
		DBPath:           getenv("PASSFORGE_DB_PATH", "passforge.db"),
		IdentityPath:     getenv("PASSFORGE_IDENTITY_PATH", "identity.p12"),
		IdentityPassword: os.Getenv("PASSFORGE_IDENTITY_PASSWORD"),
		SignatureFormat:  getenv("PASSFORGE_SIGNATURE_FORMAT", "pkcs7"),
		DigestAlgorithm:  getenv("PASSFORGE_DIGEST_ALGORITHM", "sha256"),
		OutputDir:        getenv("PASSFORGE_OUTPUT_DIR", "passes"),

		PassTypeIdentifier: getenv("PASSFORGE_PASS_TYPE_ID", "pass.com.passfoundry.demo"),
		TeamIdentifier:     getenv("PASSFORGE_TEAM_ID", "PASSFORGE"),
		OrganizationName:   os.Getenv("PASSFORGE_ORGANIZATION"),
		WebServiceURL:      os.Getenv("PASSFORGE_WEB_SERVICE_URL"),
		EmbedStrip3x:       boolenv("PASSFORGE_EMBED_STRIP_3X"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolenv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
