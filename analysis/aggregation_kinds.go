package analysis

import (
	"hermannm.dev/enumnames"
)

type AggregationKind uint8

const (
	AggregationTimeSeries AggregationKind = iota + 1
	AggregationTopClients
	AggregationCountryDistribution
	AggregationCurrencyDistribution
)

var aggregationKindMap = enumnames.NewMap(map[AggregationKind]string{
	AggregationTimeSeries:           "TIME_SERIES",
	AggregationTopClients:           "TOP_CLIENTS",
	AggregationCountryDistribution:  "COUNTRY_DISTRIBUTION",
	AggregationCurrencyDistribution: "CURRENCY_DISTRIBUTION",
})

// AggregationKinds lists every kind in the order a dashboard shows them.
var AggregationKinds = []AggregationKind{
	AggregationTimeSeries,
	AggregationTopClients,
	AggregationCountryDistribution,
	AggregationCurrencyDistribution,
}

func (kind AggregationKind) IsValid() bool {
	_, ok := aggregationKindMap.GetName(kind)
	return ok
}

func (kind AggregationKind) String() string {
	return aggregationKindMap.GetNameOrFallback(kind, "INVALID_AGGREGATION_KIND")
}

func (kind AggregationKind) MarshalJSON() ([]byte, error) {
	return aggregationKindMap.MarshalToNameJSON(kind)
}

func (kind *AggregationKind) UnmarshalJSON(bytes []byte) error {
	return aggregationKindMap.UnmarshalFromNameJSON(bytes, kind)
}
