package main

import (
	"os"
	"strings"
	"sync"

	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
)

type commandContext struct {
	configFlag  *string
	baseURLFlag *string

	configOnce sync.Once
	config     Config
	configErr  error
}

func newCommandContext(configFlag, baseURLFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		baseURLFlag: baseURLFlag,
	}
}

func (c *commandContext) ensureConfig() (Config, error) {
	c.configOnce.Do(func() {
		cfg, err := loadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if u := strings.TrimSpace(*c.baseURLFlag); u != "" {
			cfg.BaseURL = strings.TrimRight(u, "/")
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// tokenCache is the file cache named by the config, or memory only when the
// config clears cache_file.
func (c *commandContext) tokenCache(cfg Config) relaysdk.TokenCache {
	if cfg.CacheFile == "" {
		return &relaysdk.MemoryTokenCache{}
	}
	return relaysdk.NewFileTokenCache(cfg.CacheFile)
}

// prompter reads ACCONVERT_CLIENT_SECRET when set and asks on the terminal
// otherwise.
func (c *commandContext) prompter() relaysdk.SecretPrompter {
	if s := os.Getenv("ACCONVERT_CLIENT_SECRET"); s != "" {
		return relaysdk.StaticSecret(s)
	}
	return relaysdk.NewTerminalPrompter()
}

func (c *commandContext) session(cfg Config) (*relaysdk.Client, *relaysdk.Session) {
	client := relaysdk.NewClient(cfg.BaseURL)
	return client, relaysdk.NewSession(client, c.tokenCache(cfg), c.prompter())
}
