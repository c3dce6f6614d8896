// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/eventhub/internal/app/system/mongoconn"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Mongo is built in ConnectDB but does not dial until the first request
// (or health check) needs it.
type DBDeps struct {
	Mongo *mongoconn.Manager
}
