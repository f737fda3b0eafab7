package web

import (
	"io/fs"
	"testing"

	"github.com/robertkrimen/otto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientState loads state.js into a fresh JavaScript VM.
func clientState(t *testing.T) *otto.Otto {
	t.Helper()
	src, err := fs.ReadFile(Static(), "state.js")
	require.NoError(t, err)

	vm := otto.New()
	_, err = vm.Run(string(src))
	require.NoError(t, err)
	return vm
}

// evalJSON runs script and returns its last expression as JSON.
func evalJSON(t *testing.T, vm *otto.Otto, script string) string {
	t.Helper()
	_, err := vm.Run(script)
	require.NoError(t, err)
	v, err := vm.Run("JSON.stringify(out)")
	require.NoError(t, err)
	return v.String()
}

func TestState_Pager(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   string
	}{
		{"no result", `null`, `{"visible":false,"info":"","prevDisabled":true,"nextDisabled":true}`},
		{"single page", `{"page":1,"totalPages":1,"totalCount":3}`, `{"visible":false,"info":"","prevDisabled":true,"nextDisabled":true}`},
		{"empty collection", `{"page":1,"totalPages":0,"totalCount":0}`, `{"visible":false,"info":"","prevDisabled":true,"nextDisabled":true}`},
		{"first page", `{"page":1,"totalPages":3,"totalCount":45}`, `{"visible":true,"info":"Page 1 of 3 (45 total)","prevDisabled":true,"nextDisabled":false}`},
		{"middle page", `{"page":2,"totalPages":3,"totalCount":45}`, `{"visible":true,"info":"Page 2 of 3 (45 total)","prevDisabled":false,"nextDisabled":false}`},
		{"last page", `{"page":3,"totalPages":3,"totalCount":45}`, `{"visible":true,"info":"Page 3 of 3 (45 total)","prevDisabled":false,"nextDisabled":true}`},
		{"past the end", `{"page":9,"totalPages":3,"totalCount":45}`, `{"visible":true,"info":"Page 9 of 3 (45 total)","prevDisabled":false,"nextDisabled":true}`},
	}

	vm := clientState(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalJSON(t, vm, "var out = DocDeck.pager("+tt.result+");")
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestState_NewNotificationReplacesOld(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		s = DocDeck.reduce(s, {type: 'notify', message: 'first', kind: 'success', id: 1});
		s = DocDeck.reduce(s, {type: 'notify', message: 'second', kind: 'error', id: 2});
		s = DocDeck.reduce(s, {type: 'notify/clear', id: 1});
		var out = s.notification;`)
	assert.JSONEq(t, `{"message":"second","kind":"error","id":2}`, got)

	got = evalJSON(t, vm, `s = DocDeck.reduce(s, {type: 'notify/clear', id: 2}); var out = s.notification;`)
	assert.Equal(t, "null", got)
}

func TestState_ConnectResetsBrowsing(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		s = DocDeck.reduce(s, {type: 'nav/select', db: 'app', coll: 'users'});
		s = DocDeck.reduce(s, {type: 'nav/page', page: 3});
		s = DocDeck.reduce(s, {type: 'tree/toggle', db: 'app'});
		s = DocDeck.reduce(s, {type: 'query/database', db: 'app'});
		s = DocDeck.reduce(s, {type: 'connect/start'});
		var connecting = s.conn.status;
		s = DocDeck.reduce(s, {type: 'connect/ok', databases: [{name: 'other', sizeOnDisk: 0}]});
		var out = {connecting: connecting, conn: s.conn, nav: s.nav, tree: s.tree, query: s.query.database, dbs: s.databases.length};`)
	assert.JSONEq(t, `{
		"connecting": "connecting",
		"conn": {"status": "connected", "error": null},
		"nav": {"db": null, "coll": null, "page": 1, "limit": 20},
		"tree": {},
		"query": "",
		"dbs": 1
	}`, got)
}

func TestState_ConnectFailureKeepsData(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.reduce(DocDeck.initialState(), {type: 'connect/ok', databases: [{name: 'app'}]});
		s = DocDeck.reduce(s, {type: 'connect/fail', error: 'bad uri'});
		var out = {conn: s.conn, dbs: s.databases.length};`)
	assert.JSONEq(t, `{"conn":{"status":"disconnected","error":"bad uri"},"dbs":1}`, got)
}

func TestState_Navigation(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		s = DocDeck.reduce(s, {type: 'tab', tab: 'query'});
		s = DocDeck.reduce(s, {type: 'nav/select', db: 'app', coll: 'users'});
		var tab = s.tab;
		s = DocDeck.reduce(s, {type: 'nav/page', page: 4});
		var page = s.nav.page;
		s = DocDeck.reduce(s, {type: 'nav/limit', limit: 50});
		var limited = s.nav;
		s = DocDeck.reduce(s, {type: 'nav/page', page: 0});
		var out = {tab: tab, page: page, limited: limited, clamped: s.nav.page};`)
	assert.JSONEq(t, `{
		"tab": "browse",
		"page": 4,
		"limited": {"db": "app", "coll": "users", "page": 1, "limit": 50},
		"clamped": 1
	}`, got)
}

func TestState_TreeLoadsLazily(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		s = DocDeck.reduce(s, {type: 'tree/toggle', db: 'app'});
		s = DocDeck.reduce(s, {type: 'tree/loading', db: 'app'});
		var loading = s.tree.app.loading;
		s = DocDeck.reduce(s, {type: 'tree/loaded', db: 'app', collections: [{name: 'users', type: 'collection'}]});
		s = DocDeck.reduce(s, {type: 'tree/toggle', db: 'app'});
		var out = {loading: loading, node: s.tree.app};`)
	assert.JSONEq(t, `{
		"loading": true,
		"node": {"expanded": false, "loading": false, "collections": [{"name": "users", "type": "collection"}], "error": null}
	}`, got)
}

func TestState_QueryLifecycle(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		s = DocDeck.reduce(s, {type: 'query/database', db: 'app'});
		s = DocDeck.reduce(s, {type: 'query/collections', collections: [{name: 'users'}]});
		s = DocDeck.reduce(s, {type: 'query/collection', coll: 'users'});
		s = DocDeck.reduce(s, {type: 'query/running'});
		var running = s.query.running;
		s = DocDeck.reduce(s, {type: 'query/error', error: 'invalid filter'});
		var failed = {running: s.query.running, error: s.query.error, result: s.query.result};
		s = DocDeck.reduce(s, {type: 'query/result', result: 3});
		var out = {running: running, failed: failed, result: s.query.result, error: s.query.error};`)
	assert.JSONEq(t, `{
		"running": true,
		"failed": {"running": false, "error": "invalid filter", "result": null},
		"result": 3,
		"error": null
	}`, got)
}

func TestState_ReduceDoesNotMutate(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var s = DocDeck.initialState();
		var before = JSON.stringify(s);
		DocDeck.reduce(s, {type: 'nav/select', db: 'app', coll: 'users'});
		DocDeck.reduce(s, {type: 'tree/loaded', db: 'app', collections: []});
		DocDeck.reduce(s, {type: 'notify', message: 'hi', kind: 'success', id: 1});
		var unknown = DocDeck.reduce(s, {type: 'no/such/action'}) === s;
		var out = {same: JSON.stringify(s) === before, unknown: unknown};`)
	assert.JSONEq(t, `{"same":true,"unknown":true}`, got)
}

func TestState_DocumentHelpers(t *testing.T) {
	vm := clientState(t)

	got := evalJSON(t, vm, `
		var doc = {_id: 'a/b', name: 'Ada', nested: {k: 1}};
		var out = {
			id: DocDeck.idText(doc, '_id'),
			numeric: DocDeck.idText({id: 7}, 'id'),
			objectID: DocDeck.idText({_id: {k: 1}}, '_id'),
			copy: DocDeck.duplicate(doc, '_id'),
			original: doc._id
		};`)
	assert.JSONEq(t, `{
		"id": "a/b",
		"numeric": "7",
		"objectID": "{\"k\":1}",
		"copy": {"name": "Ada", "nested": {"k": 1}},
		"original": "a/b"
	}`, got)
}

func TestState_FormatBytes(t *testing.T) {
	tests := []struct {
		bytes string
		want  string
	}{
		{"0", `"0 B"`},
		{"null", `"0 B"`},
		{"512", `"512 B"`},
		{"1024", `"1 KB"`},
		{"1536", `"1.5 KB"`},
		{"3 * 1024 * 1024", `"3 MB"`},
		{"5 * 1024 * 1024 * 1024 * 1024", `"5120 GB"`},
	}

	vm := clientState(t)
	for _, tt := range tests {
		t.Run(tt.bytes, func(t *testing.T) {
			assert.Equal(t, tt.want, evalJSON(t, vm, "var out = DocDeck.formatBytes("+tt.bytes+");"))
		})
	}
}
