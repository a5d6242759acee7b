package repository

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"portfolio-catalog/internal/changefeed"
)

type Repositories struct {
	Media MediaRepository
}

// NewRepositories builds the catalog store for driver ("postgres" or "memory").
// Writes are announced through publisher; pass changefeed.NopPublisher when the
// database emits notifications itself.
func NewRepositories(driver string, db *sqlx.DB, publisher changefeed.Publisher, log *slog.Logger) (*Repositories, error) {
	var media MediaRepository
	switch driver {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres catalog requires a database connection")
		}
		media = NewMediaRepository(db)
	case "memory":
		// Nothing would ever announce in-memory writes to a database listener.
		if _, nop := publisher.(changefeed.NopPublisher); nop {
			return nil, fmt.Errorf("memory catalog requires the memory or redis changefeed")
		}
		media = NewMemoryMediaRepository()
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", driver)
	}

	if _, nop := publisher.(changefeed.NopPublisher); !nop {
		media = WithChangeEvents(media, publisher, log)
	}

	return &Repositories{Media: media}, nil
}
