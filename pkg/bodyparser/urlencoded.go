package bodyparser

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// maxArrayIndex is the highest numeric bracket index turned into an array
// position; larger indices stay map keys.
const maxArrayIndex = 20

// URLEncoded parses application/x-www-form-urlencoded bodies with bracket
// nesting:
//
//	a=1&a=2         -> {"a": ["1", "2"]}
//	user[name]=bob  -> {"user": {"name": "bob"}}
//	tags[]=x&tags[]=y -> {"tags": ["x", "y"]}
//	list[1]=b&list[0]=a -> {"list": ["a", "b"]}
func URLEncoded(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mt, charset := mediaType(r)
			if mt != "application/x-www-form-urlencoded" || !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}
			if err := checkCharset(charset); err != nil {
				cfg.onError(w, r, err)
				return
			}

			body, err := readBody(w, r, cfg.limit)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}
			if len(body) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseForm(string(body), cfg.parameterLimit, cfg.depth)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// ParseForm decodes a urlencoded string into nested maps and slices.
// Fields are applied in the order they appear.
func ParseForm(s string, parameterLimit, depth int) (map[string]any, error) {
	root := make(map[string]any)

	count := 0
	for pair := range strings.SplitSeq(s, "&") {
		if pair == "" {
			continue
		}
		count++
		if parameterLimit > 0 && count > parameterLimit {
			return nil, ErrTooManyParameters
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, errors.Join(ErrMalformedBody, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, errors.Join(ErrMalformedBody, err)
		}

		path := splitKey(key, depth)
		if path[0] == "" {
			continue
		}
		root[path[0]] = assign(root[path[0]], path[1:], value)
	}

	for k, v := range root {
		root[k] = normalize(v)
	}
	return root, nil
}

// splitKey splits "a[b][]" into ["a", "b", ""]. Brackets past depth are
// kept verbatim in the final segment.
func splitKey(key string, depth int) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.Contains(key[open:], "]") {
		return []string{key}
	}

	path := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		if len(path) > depth {
			path = append(path, rest)
			return path
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func assign(node any, path []string, value string) any {
	if len(path) == 0 {
		switch n := node.(type) {
		case nil:
			return value
		case string:
			return []any{n, value}
		case []any:
			return append(n, value)
		default:
			return n
		}
	}

	if path[0] == "" {
		var arr []any
		switch n := node.(type) {
		case nil:
		case []any:
			arr = n
		case string:
			arr = []any{n}
		default:
			return n
		}
		return append(arr, assign(nil, path[1:], value))
	}

	var m map[string]any
	switch n := node.(type) {
	case nil:
		m = make(map[string]any)
	case map[string]any:
		m = n
	case []any:
		m = make(map[string]any, len(n))
		for i, v := range n {
			m[strconv.Itoa(i)] = v
		}
	default:
		return n
	}
	m[path[0]] = assign(m[path[0]], path[1:], value)
	return m
}

// normalize turns maps keyed only by small indices into slices.
func normalize(v any) any {
	switch n := v.(type) {
	case []any:
		for i := range n {
			n[i] = normalize(n[i])
		}
		return n
	case map[string]any:
		for k := range n {
			n[k] = normalize(n[k])
		}
		indices := make([]int, 0, len(n))
		for k := range n {
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i > maxArrayIndex || strconv.Itoa(i) != k {
				return n
			}
			indices = append(indices, i)
		}
		if len(indices) == 0 {
			return n
		}
		slices.Sort(indices)
		arr := make([]any, 0, len(indices))
		for _, i := range indices {
			arr = append(arr, n[strconv.Itoa(i)])
		}
		return arr
	default:
		return v
	}
}
