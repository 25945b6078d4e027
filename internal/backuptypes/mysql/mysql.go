package mysql

import (
	"fmt"

	"github.com/shyim/db-auto-backup/internal/backup"
)

func init() {
	backup.RegisterType(&MySQLBackup{})
}

// Environment variable names for the root password
const (
	EnvMariaDBRootPassword = "MARIADB_ROOT_PASSWORD"
	EnvMySQLRootPassword   = "MYSQL_ROOT_PASSWORD"
)

// MySQLBackup implements BackupType for MySQL/MariaDB databases
type MySQLBackup struct{}

// Name returns the backup type identifier
func (m *MySQLBackup) Name() string {
	return "mysql"
}

// PasswordVariable returns the environment variable holding the root
// password. The mariadb image supports both, MARIADB_ROOT_PASSWORD wins.
func (m *MySQLBackup) PasswordVariable(env backup.Environment) string {
	if env.Has(EnvMariaDBRootPassword) {
		return EnvMariaDBRootPassword
	}
	return EnvMySQLRootPassword
}

// Command dumps all databases. The password is referenced as a shell
// variable and expanded inside the container, so it never appears in the
// exec request. MariaDB 11+ only ships mariadb-dump.
func (m *MySQLBackup) Command(env backup.Environment) backup.Command {
	script := fmt.Sprintf(
		`exec "$(command -v mariadb-dump || echo mysqldump)" -uroot -p"$%s" --all-databases`,
		m.PasswordVariable(env),
	)
	return backup.Command{
		Cmd: []string{"bash", "-c", script},
	}
}
