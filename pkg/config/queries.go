package config

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// Built-in search payloads, used when the config file does not override
// them. The databases query carries the Placeholder token that the renderer
// swaps for a concrete connection qualified name.
const (
	defaultConnectionsQueryJSON = `{
	  "dsl": {
	    "size": 400,
	    "query": {
	      "bool": {
	        "filter": {
	          "bool": {
	            "must": [
	              {"term": {"__state": "ACTIVE"}},
	              {"bool": {"should": [{"term": {"__typeName.keyword": "Connection"}}]}}
	            ]
	          }
	        }
	      }
	    }
	  },
	  "attributes": ["name", "displayName", "connectorName", "category", "isPartial"]
	}`

	defaultDatabasesQueryJSON = `{
	  "dsl": {
	    "size": 400,
	    "query": {
	      "bool": {
	        "filter": {
	          "bool": {
	            "must": [
	              {"term": {"__state": "ACTIVE"}},
	              {"bool": {"should": [{"term": {"__typeName.keyword": "Database"}}]}},
	              {"bool": {"filter": {"term": {"connectionQualifiedName": "PLACEHOLDER_TO_BE_REPLACED"}}}}
	            ]
	          }
	        }
	      }
	    }
	  },
	  "attributes": ["name", "displayName"]
	}`
)

func defaultConnectionsQuery() map[string]any {
	return mustQuery(defaultConnectionsQueryJSON)
}

func defaultDatabasesQuery() map[string]any {
	return mustQuery(defaultDatabasesQueryJSON)
}

// mustQuery parses a built-in payload literal. A parse failure here is a
// programming error, not a runtime condition.
func mustQuery(src string) map[string]any {
	v, err := oj.ParseString(src)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in query payload: %v", err))
	}
	m, ok := v.(map[string]any)
	if !ok {
		panic("built-in query payload is not an object")
	}
	return m
}
