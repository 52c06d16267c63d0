// Package bodyparser provides middleware that parses JSON and urlencoded
// request bodies into the request context.
//
//	r.Use(bodyparser.JSON(bodyparser.WithLimit(100 << 10)))
//	r.Use(bodyparser.URLEncoded())
//
//	func create(w http.ResponseWriter, r *http.Request) {
//		var req struct{ Name string `json:"name"` }
//		if err := bodyparser.Bind(r.Context(), &req); err != nil { ... }
//	}
//
// Malformed bodies fail with ErrMalformedBody (400) and oversized ones with
// ErrBodyTooLarge (413). Both are core.HTTPError values so a shared error
// handler can map them to a status.
package bodyparser
