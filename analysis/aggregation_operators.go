package analysis

import (
	"hermannm.dev/enumnames"
)

type AggregationOperator uint8

const (
	OperatorSum AggregationOperator = iota + 1
	OperatorCount
)

var operatorMap = enumnames.NewMap(map[AggregationOperator]string{
	OperatorSum:   "SUM",
	OperatorCount: "COUNT",
})

func (operator AggregationOperator) IsValid() bool {
	_, ok := operatorMap.GetName(operator)
	return ok
}

func (operator AggregationOperator) String() string {
	return operatorMap.GetNameOrFallback(operator, "INVALID_OPERATOR")
}

func (operator AggregationOperator) MarshalJSON() ([]byte, error) {
	return operatorMap.MarshalToNameJSON(operator)
}

func (operator *AggregationOperator) UnmarshalJSON(bytes []byte) error {
	return operatorMap.UnmarshalFromNameJSON(bytes, operator)
}
