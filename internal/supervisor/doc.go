// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

/*
Package supervisor runs the long-lived parts of the server under a
github.com/thejerf/suture/v4 supervision tree.

	bookwise (root)
	├── data-layer
	│   └── cache-janitor    evicts expired preference snapshots
	└── api-layer
	    └── http-server      serves the chi router

Crashed services are restarted with suture's failure decay and backoff.
Events go to zerolog through sutureslog and logging.NewSlogLogger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCacheJanitorService(engine, time.Minute, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)

Service implementations live in the services subpackage.
*/
package supervisor
