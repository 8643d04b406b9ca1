package pricelist

import (
	"github.com/smallbiznis/pricelist/internal/pricelist/repository"
	"github.com/smallbiznis/pricelist/internal/pricelist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricelist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
