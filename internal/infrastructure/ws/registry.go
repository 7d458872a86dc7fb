package ws

// Registry maps a user id to its current connection. A later bind for the
// same user id silently replaces the earlier one.
//
// Not goroutine-safe: the Core event loop is the only caller.
type Registry struct {
	clients map[string]*Client // userID → client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

func (r *Registry) Bind(userID string, cl *Client) {
	if userID == "" {
		return
	}
	r.clients[userID] = cl
}

// UnbindAll removes every user id currently bound to cl and returns the
// ids that were removed. Idempotent.
func (r *Registry) UnbindAll(cl *Client) []string {
	var removed []string
	for userID, bound := range r.clients {
		if bound == cl {
			delete(r.clients, userID)
			removed = append(removed, userID)
		}
	}
	return removed
}

func (r *Registry) Resolve(userID string) (*Client, bool) {
	cl, ok := r.clients[userID]
	return cl, ok
}
