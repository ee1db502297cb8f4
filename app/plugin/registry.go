// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package plugin

import (
	"context"

	"bimexport/app/plugin/impl/fulltree"
	"bimexport/app/plugin/impl/searchindex"
	"bimexport/app/plugin/types"
)

// Strategy is one way of discovering model files in a project. All strategies
// share the same contract, consumers never depend on which one is running.
type Strategy struct {
	Discover func(ctx context.Context, req types.DiscoverRequest, onProgress types.ProgressFunc, onFile types.FileFunc) (types.Result, error)
	Name     string
}

var strategyMap map[string]Strategy = map[string]Strategy{
	"fulltree": {
		Discover: fulltree.Discover,
		Name:     "Full tree traversal",
	},
	"search": {
		Discover: searchindex.Discover,
		Name:     "Search index",
	},
}

func GetStrategyToNameMap() map[string]string {
	res := map[string]string{}
	for k, v := range strategyMap {
		res[k] = v.Name
	}
	return res
}

// GetStrategy returns the named strategy, unknown selectors fall back to the
// full tree traversal.
func GetStrategy(s string) Strategy {
	strategy, ok := strategyMap[s]
	if !ok {
		return strategyMap["fulltree"]
	}
	return strategy
}
