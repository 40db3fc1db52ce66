package ws

// room is the set of local connections subscribed to one room code. It is
// guarded by the Hub's lock.
type room struct {
	conns map[*clientConn]struct{}
}

func newRoom() *room { return &room{conns: map[*clientConn]struct{}{}} }

// add reports whether c was not already a member.
func (r *room) add(c *clientConn) bool {
	if _, ok := r.conns[c]; ok {
		return false
	}
	r.conns[c] = struct{}{}
	return true
}

func (r *room) remove(c *clientConn) bool {
	if _, ok := r.conns[c]; !ok {
		return false
	}
	delete(r.conns, c)
	return true
}

func (r *room) snapshot() []*clientConn {
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}
