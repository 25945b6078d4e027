package postgres

import (
	"github.com/shyim/db-auto-backup/internal/backup"
)

func init() {
	backup.RegisterType(&PostgresBackup{})
}

// EnvPostgresUser names the superuser in the official postgres image
const EnvPostgresUser = "POSTGRES_USER"

// DefaultUser is used when the container does not set POSTGRES_USER
const DefaultUser = "postgres"

// PostgresBackup implements BackupType for PostgreSQL databases
type PostgresBackup struct{}

// Name returns the backup type identifier
func (p *PostgresBackup) Name() string {
	return "postgres"
}

// Command dumps the whole cluster, roles included, with pg_dumpall
func (p *PostgresBackup) Command(env backup.Environment) backup.Command {
	return backup.Command{
		Cmd: []string{"pg_dumpall", "-U", env.Get(EnvPostgresUser, DefaultUser)},
	}
}
