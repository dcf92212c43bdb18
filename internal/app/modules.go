package app

import (
	"io"

	"github.com/vk/configo/modules/arith"
	"github.com/vk/configo/modules/env"
	"github.com/vk/configo/modules/httpclient"
	"github.com/vk/configo/modules/layers"
	"github.com/vk/configo/modules/print"
	"github.com/vk/configo/registry"
)

// CoreModules is the definitive list of modules compiled into the configo
// binary. The print module writes to outW.
func CoreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&arith.Module{},
		&layers.Module{},
		&env.Module{},
		&httpclient.Module{},
		&print.Module{Out: outW},
	}
}
