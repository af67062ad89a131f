package socket

import "github.com/nodejs-quic/quicsocket/internal/protocol"

// cidTable is the two-level connection-ID table (C2, spec §4.2): a primary
// map from connection ID to session, and an alias map from an additional
// connection ID a session may present to its primary. All mutation goes
// through the Socket so the "every alias resolves to a present primary"
// invariant can be maintained atomically; sessions never touch this table
// directly (spec §9, "Session membership in multiple tables").
type cidTable struct {
	primary map[string]Session
	alias   map[string]string // alias CID key -> primary CID key
}

func newCIDTable() *cidTable {
	return &cidTable{
		primary: make(map[string]Session),
		alias:   make(map[string]string),
	}
}

// lookup returns the session for cid, resolving through the alias map on a
// primary miss.
func (t *cidTable) lookup(cid protocol.ConnectionID) (Session, bool) {
	key := cid.Key()
	if sess, ok := t.primary[key]; ok {
		return sess, true
	}
	if primaryKey, ok := t.alias[key]; ok {
		sess, ok := t.primary[primaryKey]
		return sess, ok
	}
	return nil, false
}

// addPrimary registers cid as sess's primary connection ID.
func (t *cidTable) addPrimary(cid protocol.ConnectionID, sess Session) {
	t.primary[cid.Key()] = sess
}

// addAlias registers alias as an additional route to primary. primary must
// already be registered via addPrimary.
func (t *cidTable) addAlias(alias, primary protocol.ConnectionID) {
	t.alias[alias.Key()] = primary.Key()
}

// removeAlias retires a single alias without affecting the primary or the
// session it points to.
func (t *cidTable) removeAlias(alias protocol.ConnectionID) {
	delete(t.alias, alias.Key())
}

// removePrimary removes a session's primary entry and every alias pointing
// at it, so no dangling alias can survive the session (spec §3 invariant
// "every entry in the alias map resolves to a present primary").
func (t *cidTable) removePrimary(primary protocol.ConnectionID, aliases []protocol.ConnectionID) {
	delete(t.primary, primary.Key())
	for _, a := range aliases {
		delete(t.alias, a.Key())
	}
}
