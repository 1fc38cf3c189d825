package cmd

import (
	"fmt"
	"strings"

	"github.com/validoc/validoc/pkg/persistence"
	"github.com/validoc/validoc/pkg/persistence/file"
	"github.com/validoc/validoc/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "redis"}

func NewPersistence(databaseURL string) persistence.Persistence {
	provider := parsePersistenceProvider(databaseURL)

	switch provider {
	case "redis":
		p, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to redis: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
