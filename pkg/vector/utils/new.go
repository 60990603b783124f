// Package vectorutils is the vector driver utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/vector"
	"github.com/finsightco/finsight/pkg/vector/chroma"
	"github.com/finsightco/finsight/pkg/vector/memindex"
	"github.com/finsightco/finsight/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	TargetURL    string
	DBPath       string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "memory":
		return memindex.NewIndex(o.Logger), nil
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL: o.TargetURL,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
