package app

import (
	"github.com/specialistvlad/taskrun/internal/registry"
	"github.com/specialistvlad/taskrun/modules/http_request"
	"github.com/specialistvlad/taskrun/modules/print"
	"github.com/specialistvlad/taskrun/modules/testtask"
)

// coreModules is the definitive list of all modules that are compiled into
// the taskrun binary.
var coreModules = []registry.Module{
	&testtask.Module{},
	&print.Module{},
	&http_request.Module{},
}
