package integrationtests

import "github.com/vk/nodegrid/internal/app"

// appConfig returns the base configuration shared by the tests. runGraph
// fills in the paths.
func appConfig() app.Config {
	return app.Config{LogFormat: "text"}
}
