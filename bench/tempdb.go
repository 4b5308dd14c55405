package bench

import (
	"strings"

	"github.com/google/uuid"
)

const tempDatabasePrefix = "rangebench_"

// TempDatabaseName returns a fresh name for a disposable database. The name
// is a plain identifier so it can be used unquoted in DDL.
func TempDatabaseName() string {
	return tempDatabasePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
