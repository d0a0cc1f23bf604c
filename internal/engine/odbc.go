//go:build odbc

package engine

import (
	_ "github.com/alexbrainman/odbc" // ODBC driver, needs unixODBC at build time
)
