package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/mailboard/internal/app"
	"github.com/okian/mailboard/internal/domain/aggregate"
)

// parseQuery reads the filter and shaping parameters of r. An absent filter
// parameter selects every known value; a present but empty one selects none.
// Lists may repeat the parameter or separate values with commas.
func parseQuery(r *http.Request, deps Dependencies) (service.Query, error) {
	const op = "api.parse_query"
	values := r.URL.Query()
	q := deps.DefaultQuery()

	var err error
	if q.Years, err = intList(values, "year"); err != nil {
		return q, WrapKind(op, ErrBadRequest, err)
	}
	if q.Quarters, err = intList(values, "quarter"); err != nil {
		return q, WrapKind(op, ErrBadRequest, err)
	}
	q.Campaigns = stringList(values, "campaign")
	q.BotStates = stringList(values, "bot")
	q.TimeRanges = stringList(values, "time_range")

	if v := values.Get("exclude_invalid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, WrapKind(op, ErrBadRequest, err)
		}
		q.ExcludeInvalid = b
	}
	if q.Top, err = aggregate.ParseTopN(values.Get("top"), q.Top); err != nil {
		return q, err
	}
	q.FullNumbers = deps.FullNumbers(r.Context(), r.Header.Get(SessionHeader))
	return q, nil
}

// stringList returns nil when name is absent and a non-nil slice otherwise.
// Each repeated parameter is one value; commas are kept since campaign and
// range labels may contain them.
func stringList(values url.Values, name string) []string {
	raw, ok := values[name]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// intList also accepts comma separated numbers.
func intList(values url.Values, name string) ([]int, error) {
	raw, ok := values[name]
	if !ok {
		return nil, nil
	}
	parts := []string{}
	for _, v := range raw {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	out := make([]int, 0, len(parts))
	for _, v := range parts {
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(v), "Q"))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
