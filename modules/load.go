package modules

import (
	"github.com/jacksonlee411/approvals/modules/approvals"
	"github.com/jacksonlee411/approvals/pkg/application"
)

type Options = approvals.ModuleOptions

func BuiltInModules(opts Options) []application.Module {
	return []application.Module{
		approvals.NewModule(&opts),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, externalModules...)
}
