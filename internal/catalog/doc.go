// Package catalog compiles CUE action catalogs.
//
// A catalog declares the actions a model understands and the shape of their
// payloads:
//
//	action: {
//		increment: {}
//		add: payload: int
//		"todo/add": {
//			tag: "todo/add"
//			payload: {title: string & !=""}
//		}
//	}
//
// An entry without a payload field is void. The tag defaults to the field
// label. Catalogs are used by the harness to check scenario payloads before
// dispatch and by the CLI to check a model's registry.
//
// Actions are open: tags a catalog does not declare pass CheckPayload
// unchecked, since reducers return the state unchanged for them.
package catalog
