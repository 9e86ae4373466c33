package server

import (
	"fmt"
	"net/http"
)

// handleEvents streams the player's events over SSE. EventSource cannot
// set headers, so the session token is also accepted as a query
// parameter.
func handleEvents(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(store, r)
		if err != nil {
			if token := r.URL.Query().Get("token"); token != "" {
				sess, err = store.UserFromToken(r.Context(), token)
			}
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not signed in")
				return
			}
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := broker.Subscribe(sess.UserID)
		defer broker.Unsubscribe(sess.UserID, ch)

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
