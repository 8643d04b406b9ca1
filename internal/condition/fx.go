package condition

import (
	"github.com/smallbiznis/pricelist/internal/condition/repository"
	"github.com/smallbiznis/pricelist/internal/condition/service"
	"go.uber.org/fx"
)

var Module = fx.Module("condition.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
