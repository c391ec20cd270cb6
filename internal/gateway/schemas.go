package gateway

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

var (
	number  = map[string]any{"type": "number"}
	integer = map[string]any{"type": "integer"}
	index   = map[string]any{"type": "integer", "minimum": 0}
	text    = map[string]any{"type": "string"}
	boolean = map[string]any{"type": "boolean"}
)

// Response contracts, one per endpoint. They pin only what the dashboard
// reads; extra fields are allowed.
var (
	trendSchema = object([]string{"data_points", "summary"}, map[string]any{
		"data_points": arrayOf(object([]string{"timestamp", "defect_rate"}, map[string]any{
			"timestamp":         text,
			"total_products":    integer,
			"rejected_products": integer,
			"defect_rate":       number,
		})),
		"summary": object(nil, map[string]any{
			"avg_rate":       number,
			"min_rate":       number,
			"max_rate":       number,
			"total_products": integer,
		}),
	})

	topDefectsSchema = object([]string{"defects"}, map[string]any{
		"defects": arrayOf(object([]string{"defect_type", "count"}, map[string]any{
			"defect_type": text,
			"count":       integer,
			"percentage":  number,
		})),
		"summary": object(nil, map[string]any{
			"total_defects":     integer,
			"most_common":       text,
			"affected_products": integer,
		}),
	})

	machineComparisonSchema = object([]string{"machines"}, map[string]any{
		"machines": arrayOf(object([]string{"machine_id", "total", "defect_rate"}, map[string]any{
			"machine_id":  text,
			"total":       integer,
			"rejected":    integer,
			"accepted":    integer,
			"defect_rate": number,
		})),
	})

	distributionSchema = object([]string{"distribution"}, map[string]any{
		"distribution": arrayOf(object([]string{"defect_count", "product_count"}, map[string]any{
			"defect_count":  map[string]any{"type": []string{"integer", "string"}},
			"product_count": integer,
			"percentage":    number,
		})),
		"summary": object(nil, map[string]any{
			"total_products": integer,
			"zero_defects":   integer,
			"perfect_rate":   number,
		}),
	})

	scatterSchema = object([]string{"points"}, map[string]any{
		"points": arrayOf(object([]string{"cycle_time", "defect_count", "is_rejected"}, map[string]any{
			"cycle_time":   number,
			"defect_count": integer,
			"product_id":   integer,
			"is_rejected":  boolean,
		})),
		"stats": object(nil, map[string]any{
			"correlation":          number,
			"average_cycle_time":   number,
			"average_defect_count": number,
			"sample_size":          integer,
		}),
	})

	heatmapSchema = object([]string{"cells"}, map[string]any{
		"cells": arrayOf(map[string]any{
			"oneOf": []any{
				map[string]any{"type": "array", "items": index, "minItems": 3, "maxItems": 3},
				object([]string{"machine_index", "defect_index", "count"}, map[string]any{
					"machine_index": index,
					"defect_index":  index,
					"count":         integer,
				}),
			},
		}),
		"machine_labels": arrayOf(text),
		"defect_labels":  arrayOf(text),
		"machines":       arrayOf(text),
		"defect_types":   arrayOf(text),
	})

	machinesSchema = object([]string{"machines"}, map[string]any{
		"machines": arrayOf(text),
		"count":    integer,
	})

	productSchema = object([]string{"product", "defects"}, map[string]any{
		"product": object([]string{"id"}, map[string]any{
			"id":             integer,
			"machine_id":     text,
			"overall_reject": boolean,
			"defect_count":   integer,
		}),
		"defects": arrayOf(object([]string{"defect_type"}, map[string]any{
			"defect_type": text,
			"severity":    number,
			"reject":      boolean,
		})),
	})
)

// validate checks a response body against its endpoint contract.
func validate(schema map[string]any, body []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("payload failed validation: %s", strings.Join(details, "; "))
}
