package odata

import (
	"sort"
	"strconv"
	"strings"
)

// CustomField references a user-defined field exposed through a view,
// rendered as View.FieldName for the $custom parameter.
func CustomField(view, field string) string {
	return view + "." + field
}

// CustomFieldOn references a user-defined field on a detail entity,
// rendered as Entity/View.FieldName. QueryOptions expands the detail
// entity automatically so the custom value is present in the response.
func CustomFieldOn(entity, view, field string) string {
	return entity + "/" + CustomField(view, field)
}

// CustomAttribute references a user-defined attribute by its ID, rendered
// as View.AttributeID, e.g. Document.AttributeOPERATSYST.
func CustomAttribute(view, attributeID string) string {
	return view + ".Attribute" + attributeID
}

// QueryOptions collects the query parameters of one endpoint request.
// The zero value produces no parameters.
type QueryOptions struct {
	Filter Expr
	Expand []string
	Select []string
	Custom []string
	Top    int
	Skip   int
}

// ToParams renders the options as request query parameters. Only set
// options produce a key. $expand is sorted and deduplicated, and detail
// entities referenced by custom fields are expanded implicitly.
func (o QueryOptions) ToParams() (map[string]string, error) {
	params := make(map[string]string)

	if !o.Filter.Zero() {
		filter, err := o.Filter.Compile()
		if err != nil {
			return nil, err
		}
		params["$filter"] = filter
	}

	expand := append([]string(nil), o.Expand...)
	for _, custom := range o.Custom {
		if i := strings.IndexByte(custom, '/'); i > 0 {
			expand = append(expand, custom[:i])
		}
	}
	if len(expand) > 0 {
		params["$expand"] = joinDistinct(expand)
	}
	if len(o.Select) > 0 {
		params["$select"] = strings.Join(o.Select, ",")
	}
	if len(o.Custom) > 0 {
		params["$custom"] = strings.Join(o.Custom, ",")
	}
	if o.Top > 0 {
		params["$top"] = strconv.Itoa(o.Top)
	}
	if o.Skip > 0 {
		params["$skip"] = strconv.Itoa(o.Skip)
	}
	return params, nil
}

func joinDistinct(values []string) string {
	sort.Strings(values)
	out := values[:0]
	var prev string
	for i, v := range values {
		if i > 0 && v == prev {
			continue
		}
		out = append(out, v)
		prev = v
	}
	return strings.Join(out, ",")
}
