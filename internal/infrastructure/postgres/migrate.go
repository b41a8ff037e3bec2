package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/vendalink/vendalink-api/pkg/config"
)

// RunMigrations aplica as migrações pendentes do diretório configurado.
// O esquema evolui só por migrações aditivas (colunas novas anuláveis com
// default); nunca se reaproveita o significado de uma coluna existente.
func RunMigrations(cfg config.DBConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("abrir migrações: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migrações: %w", err)
	}
	return nil
}
