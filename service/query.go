package service

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Reserved query keys carry pagination, sorting and projection; everything
// else in the parameter bag is treated as a field filter.
var reservedParams = map[string]struct{}{
	"page":   {},
	"limit":  {},
	"sort":   {},
	"select": {},
}

// Operator suffixes accepted in filter keys, e.g. age_upon_outcome_in_weeks[gte]=26
// or breed[in]=Newfoundland,Bloodhound.
var filterOperators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

type listOptions struct {
	Page  int64
	Limit int64
	Sort  bson.D
	Sel   []string
}

func parseListOptions(params map[string][]string, defaultLimit int64) listOptions {
	opts := listOptions{Page: 1, Limit: defaultLimit}
	if v := firstParam(params, "page"); v != "" {
		if page, err := strconv.ParseInt(v, 10, 64); err == nil && page > 0 {
			opts.Page = page
		}
	}
	if v := firstParam(params, "limit"); v != "" {
		if limit, err := strconv.ParseInt(v, 10, 64); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}
	if v := firstParam(params, "sort"); v != "" {
		opts.Sort = parseSort(v)
	}
	if v := firstParam(params, "select"); v != "" {
		for _, field := range strings.Split(v, ",") {
			if field = strings.TrimSpace(field); field != "" {
				opts.Sel = append(opts.Sel, field)
			}
		}
	}
	return opts
}

// parseSort turns "-datetime,name" into a bson sort document. A leading dash
// means descending.
func parseSort(raw string) bson.D {
	var sort bson.D
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		sort = append(sort, bson.E{Key: field, Value: order})
	}
	return sort
}

// buildFilter translates the non-reserved query parameters into a bson
// filter. Bare keys are equality matches; a key of the form field[op] applies
// the operator to the value ("in" splits on commas).
func buildFilter(params map[string][]string) bson.M {
	filter := bson.M{}
	for key, values := range params {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		if rejectedFilterKey(key) {
			continue
		}
		if len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]

		field, op, ok := splitOperator(key)
		if !ok {
			filter[key] = parseScalar(value)
			continue
		}
		if op == "$in" {
			members := bson.A{}
			for _, member := range strings.Split(value, ",") {
				members = append(members, parseScalar(strings.TrimSpace(member)))
			}
			mergeOperator(filter, field, op, members)
			continue
		}
		mergeOperator(filter, field, op, parseScalar(value))
	}
	return filter
}

// rejectedFilterKey blocks keys that would reach the store as query operators
// rather than field names. A leading $ is a Mongo operator and a dot is a
// path traversal; the filter grammar only supports the field[op] vocabulary.
func rejectedFilterKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

func splitOperator(key string) (field, op string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	mongoOp, known := filterOperators[key[open+1:len(key)-1]]
	if !known {
		return "", "", false
	}
	return key[:open], mongoOp, true
}

// mergeOperator lets two range operators on the same field coexist, e.g.
// age[gte]=26&age[lte]=156.
func mergeOperator(filter bson.M, field, op string, value any) {
	if existing, ok := filter[field].(bson.M); ok {
		existing[op] = value
		return
	}
	filter[field] = bson.M{op: value}
}

// parseScalar types a raw query value: dates first (RFC3339 or YYYY-MM-DD),
// then numbers, otherwise the string itself.
func parseScalar(raw string) any {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func firstParam(params map[string][]string, key string) string {
	if values, ok := params[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// filterEcho is what list audits carry in details.filters: the applied
// filters minus the reserved pagination/sort/projection keys.
func filterEcho(params map[string][]string) bson.M {
	echo := bson.M{}
	for key, values := range params {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		if rejectedFilterKey(key) {
			continue
		}
		if len(values) == 1 {
			echo[key] = values[0]
			continue
		}
		echo[key] = strings.Join(values, ",")
	}
	return echo
}
