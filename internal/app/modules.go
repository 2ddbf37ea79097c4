package app

import (
	"io"

	"github.com/vk/nodegrid/internal/registry"
	"github.com/vk/nodegrid/modules/arith"
	"github.com/vk/nodegrid/modules/constant"
	"github.com/vk/nodegrid/modules/env_vars"
	"github.com/vk/nodegrid/modules/http_request"
	"github.com/vk/nodegrid/modules/print"
	"github.com/vk/nodegrid/modules/s3"
	"github.com/vk/nodegrid/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the nodegrid binary. print writes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&constant.Module{},
		&arith.Module{},
		&print.Module{Out: outW},
		&env_vars.Module{},
		&http_request.Module{},
		&s3.Module{},
		&socketio.Module{},
	}
}
