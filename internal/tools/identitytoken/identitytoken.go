// Package identitytoken issues development identity tokens and secrets.
package identitytoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/foodshare/internal/services/donations/identity"
)

// Config holds identity-token command configuration.
type Config struct {
	UserID         string
	TTL            time.Duration
	GenerateSecret bool
	SecretBytes    int
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{TTL: 24 * time.Hour, SecretBytes: 32}
	fs.StringVar(&cfg.UserID, "user", "", "user id to place in the token subject")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime")
	fs.BoolVar(&cfg.GenerateSecret, "generate-secret", false, "print a new signing secret instead of a token")
	fs.IntVar(&cfg.SecretBytes, "bytes", cfg.SecretBytes, "secret size in random bytes")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes either a fresh secret or a signed token for cfg.UserID to out.
// Tokens are signed with the FOODSHARE_IDENTITY_* settings.
func Run(cfg Config, out io.Writer, reader io.Reader, now func() time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	if cfg.GenerateSecret {
		return writeSecret(cfg.SecretBytes, out, reader)
	}
	if strings.TrimSpace(cfg.UserID) == "" {
		return errors.New("-user is required")
	}
	identityCfg, err := identity.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if identityCfg.Secret == "" {
		return fmt.Errorf("%sSECRET is required to sign tokens", identity.EnvPrefix)
	}
	if cfg.TTL > 0 {
		identityCfg.TokenTTL = cfg.TTL
	}
	token, err := identity.NewProvider(identityCfg, now).Issue(cfg.UserID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func writeSecret(size int, out io.Writer, reader io.Reader) error {
	if size < 32 {
		return errors.New("bytes must be at least 32")
	}
	if reader == nil {
		reader = rand.Reader
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	_, err := fmt.Fprintf(out, "%sSECRET=%s\n", identity.EnvPrefix, hex.EncodeToString(buf))
	return err
}
