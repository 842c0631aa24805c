package db

import (
	"fmt"
	"strings"

	"hermannm.dev/enumnames"
)

type SupportedDB uint8

const (
	DBClickHouse SupportedDB = iota + 1
	DBElasticsearch
)

// The names double as source identifier schemes, as in "clickhouse://transactions".
var supportedDBNames = enumnames.NewMap(map[SupportedDB]string{
	DBClickHouse:    "clickhouse",
	DBElasticsearch: "elasticsearch",
})

var SupportedDBs = []SupportedDB{DBClickHouse, DBElasticsearch}

func ParseSupportedDB(name string) (SupportedDB, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, supportedDB := range SupportedDBs {
		if supportedDB.String() == name {
			return supportedDB, nil
		}
	}
	return 0, fmt.Errorf("unsupported database '%s' (must be one of %v)", name, SupportedDBs)
}

func (supportedDB SupportedDB) IsValid() bool {
	_, ok := supportedDBNames.GetName(supportedDB)
	return ok
}

func (supportedDB SupportedDB) String() string {
	return supportedDBNames.GetNameOrFallback(supportedDB, "INVALID_DATABASE")
}

func (supportedDB SupportedDB) MarshalJSON() ([]byte, error) {
	return supportedDBNames.MarshalToNameJSON(supportedDB)
}

func (supportedDB *SupportedDB) UnmarshalJSON(bytes []byte) error {
	return supportedDBNames.UnmarshalFromNameJSON(bytes, supportedDB)
}
